package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/db"
	"github.com/efarmaplus/storefront/pkg/logger"
)

// MaybeRunDev brings the kv_entries schema up to date at startup. SQLite
// files are local to the process and always migrated; postgres only in dev
// with EFARMAPLUS_AUTO_MIGRATE set, otherwise cmd/migrate owns the schema.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	dialect := client.Dialect()
	if !shouldAutoRun(cfg, dialect) {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": dialect})
	if err := Run(ctx, sqlDB, dialect, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	if version, err := goose.GetDBVersionContext(ctx, sqlDB); err == nil {
		ctx = logg.WithField(ctx, "schema_version", version)
	}
	logg.Info(ctx, "cart store schema up to date")
	return nil
}

func shouldAutoRun(cfg *config.Config, dialect string) bool {
	return dialect == config.DBDriverSQLite || (cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate)
}
