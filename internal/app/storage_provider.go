package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/pictures2pages-backend/internal/platform/gcp"
	"github.com/yungbote/pictures2pages-backend/internal/platform/logger"
	"github.com/yungbote/pictures2pages-backend/internal/platform/miniostore"
	"github.com/yungbote/pictures2pages-backend/internal/platform/objectstore"
)

var (
	newGCSStore = func(ctx context.Context, log *logger.Logger, cfg objectstore.Config, credentials string) (objectstore.Store, error) {
		return gcp.NewBucketStore(ctx, log, cfg, credentials)
	}
	newMinIOStore = func(ctx context.Context, log *logger.Logger, cfg objectstore.Config, mc miniostore.Config) (objectstore.Store, error) {
		return miniostore.New(ctx, log, cfg, mc)
	}
)

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorInvalidConfig       StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveObjectStore picks GCS, the GCS emulator, or MinIO from config and
// returns a classified error when the backend cannot be reached or configured.
func resolveObjectStore(ctx context.Context, log *logger.Logger, cfg Config) (objectstore.Store, error) {
	storeCfg, err := cfg.ObjectStoreConfig()
	if err != nil {
		classified := classifyStorageProviderBootstrapError(objectstore.Config{Mode: objectstore.Mode(cfg.ObjectStorageMode)}, err)
		log.Error("Object storage provider selection failed", "mode", cfg.ObjectStorageMode, "error", classified)
		return nil, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", storeCfg.Mode,
		"mode_source", storeCfg.ModeSource(),
		"compatibility_fallback", storeCfg.CompatibilityFallback,
		"emulator_host", storeCfg.EmulatorHost,
	)

	var store objectstore.Store
	switch storeCfg.Mode {
	case objectstore.ModeMinIO:
		store, err = newMinIOStore(ctx, log, storeCfg, cfg.MinIOConfig())
	default:
		store, err = newGCSStore(ctx, log, storeCfg, cfg.GoogleCredentials())
	}
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storeCfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", storeCfg.Mode,
			"mode_source", storeCfg.ModeSource(),
			"emulator_host", storeCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return store, nil
}

func classifyStorageProviderBootstrapError(storeCfg objectstore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *objectstore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case objectstore.ConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case objectstore.ConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case objectstore.ConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		default:
			code = StorageProviderBootstrapErrorInvalidConfig
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storeCfg.Mode),
		EmulatorHost: storeCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
