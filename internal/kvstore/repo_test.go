package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/efarmaplus/storefront/internal/cart"
	"github.com/efarmaplus/storefront/pkg/config"
	"github.com/efarmaplus/storefront/pkg/db"
	"github.com/efarmaplus/storefront/pkg/logger"
	"github.com/efarmaplus/storefront/pkg/migrate"
	"github.com/shopspring/decimal"
)

var _ cart.Store = (*Repository)(nil)

func newTestRepo(t *testing.T, ttl time.Duration) *Repository {
	t.Helper()
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "kv.db"),
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := migrate.MaybeRunDev(ctx, &config.Config{}, logger.Nop(), client); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepository(client.DB(), ttl)
}

func TestRepositoryUpsertAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 0)

	if _, found, err := repo.Load(ctx, "efp:cart:s1"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	if err := repo.Save(ctx, "efp:cart:s1", "[1]"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, "efp:cart:s1", "[2]"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	value, found, err := repo.Load(ctx, "efp:cart:s1")
	if err != nil || !found {
		t.Fatalf("expected value, found=%v err=%v", found, err)
	}
	if value != "[2]" {
		t.Fatalf("expected last write to win, got %q", value)
	}

	if err := repo.Delete(ctx, "efp:cart:s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := repo.Load(ctx, "efp:cart:s1"); found {
		t.Fatalf("expected key removed")
	}
}

func TestRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, time.Hour)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	if err := repo.Save(ctx, "k", "v"); err != nil {
		t.Fatalf("save: %v", err)
	}

	repo.now = func() time.Time { return base.Add(30 * time.Minute) }
	if _, found, _ := repo.Load(ctx, "k"); !found {
		t.Fatalf("expected live entry before expiry")
	}

	repo.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, found, _ := repo.Load(ctx, "k"); found {
		t.Fatalf("expected expired entry to read as missing")
	}

	purged, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected one purged row, got %d", purged)
	}
}

func TestRepositoryLoadSlidesExpiry(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, time.Hour)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	if err := repo.Save(ctx, "k", "v"); err != nil {
		t.Fatalf("save: %v", err)
	}

	repo.now = func() time.Time { return base.Add(50 * time.Minute) }
	if _, found, err := repo.Load(ctx, "k"); err != nil || !found {
		t.Fatalf("expected live entry, found=%v err=%v", found, err)
	}

	// read-only access keeps the entry alive past the original expiry
	repo.now = func() time.Time { return base.Add(90 * time.Minute) }
	if _, found, _ := repo.Load(ctx, "k"); !found {
		t.Fatalf("expected read to have refreshed expiry")
	}
	if purged, _ := repo.PurgeExpired(ctx); purged != 0 {
		t.Fatalf("expected nothing purged, got %d", purged)
	}

	repo.now = func() time.Time { return base.Add(3 * time.Hour) }
	if _, found, _ := repo.Load(ctx, "k"); found {
		t.Fatalf("expected entry to expire without further reads")
	}
}

func TestCartEnginePersistsThroughRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, 0)

	e := cart.New(ctx, repo, "efp:cart:db")
	e.Add(ctx, cart.Item{ID: "10", Name: "Ibuprofeno", UnitPrice: decimal.NewFromInt(2500)})
	e.Add(ctx, cart.Item{ID: "10", Name: "Ibuprofeno", UnitPrice: decimal.NewFromInt(2500)})

	reloaded := cart.New(ctx, repo, "efp:cart:db")
	if reloaded.TotalItems() != 2 {
		t.Fatalf("expected 2 items after reload, got %d", reloaded.TotalItems())
	}
	if !reloaded.TotalPrice().Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected total %s", reloaded.TotalPrice())
	}
}
