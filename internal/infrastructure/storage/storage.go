package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/ecomstore/backend/internal/application/catalog"
	"github.com/ecomstore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Storage drivers
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// New builds the image storage backend selected by cfg.Driver.
// The S3 bucket is created on first start when it is missing.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (catalogapp.ObjectStorage, error) {
	switch cfg.Driver {
	case DriverS3:
		s, err := NewS3Storage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using S3 image storage", zap.String("bucket", s.Bucket()), zap.String("endpoint", cfg.Endpoint))
		return s, nil
	case DriverLocal, "":
		s, err := NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using local image storage", zap.String("dir", s.Root()))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
