// Package bootstrap provides dependency initialization for the editing API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/EnaihoVFX/Gebo-sub001/internal/config"
	"github.com/EnaihoVFX/Gebo-sub001/internal/media"
	"github.com/EnaihoVFX/Gebo-sub001/internal/session"
	"github.com/EnaihoVFX/Gebo-sub001/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	SessionService *session.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize the ffmpeg probe/peak adapter
	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath)

	// Initialize session repository
	repo := session.NewMemoryRepository()

	svc := session.NewService(
		repo,
		ffmpeg,
		ffmpeg,
		store,
		logger,
		session.WithEpsilon(cfg.MergeEpsilon),
		session.WithDefaultPadMs(cfg.DefaultLeaveMs),
		session.WithSurfaceWidth(cfg.TimelineWidth),
	)

	return &Dependencies{
		SessionService: svc,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
