package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/efarmaplus/storefront/pkg/config"
)

// FromConfig builds the configured backend.
func FromConfig(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", config.StorageDriverLocal:
		return NewLocal(cfg.LocalDir, cfg.LocalURL), nil
	case config.StorageDriverS3:
		return NewS3(ctx, S3Config{
			Region:        cfg.Region,
			Bucket:        cfg.Bucket,
			Prefix:        cfg.Prefix,
			PublicBaseURL: cfg.PublicBaseURL,
			Endpoint:      cfg.Endpoint,
			AccessKey:     cfg.AccessKey,
			SecretKey:     cfg.SecretKey,
			UsePathStyle:  cfg.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
