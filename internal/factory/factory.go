package factory

import (
	"context"
	"fmt"

	"github.com/anime-shed/photo-curator-go/internal/config"
	"github.com/anime-shed/photo-curator-go/internal/storage"
	"github.com/anime-shed/photo-curator-go/pkg/validation"
)

// StorageType represents different types of image sources
type StorageType string

const (
	// LocalStorage for local file system paths and file:// references
	LocalStorage StorageType = "local"
	// HTTPStorage for http:// and https:// references
	HTTPStorage StorageType = "http"
	// AzureStorage for azblob:// references
	AzureStorage StorageType = "azure"
	// S3Storage for s3:// references
	S3Storage StorageType = "s3"
)

// StorageFactory creates image sources
type StorageFactory interface {
	CreateStorage(ctx context.Context, storageType StorageType) (storage.ImageSource, error)
	CreateRouter(ctx context.Context) (*storage.Router, error)
}

// storageFactory implements StorageFactory from configuration
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a source based on the specified type
func (f *storageFactory) CreateStorage(ctx context.Context, storageType StorageType) (storage.ImageSource, error) {
	switch storageType {
	case LocalStorage:
		return storage.NewLocalSource(), nil
	case HTTPStorage:
		return storage.NewHTTPSource(storage.WithTimeout(f.cfg.RequestTimeout)), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage is not configured")
		}
		return storage.NewAzureSource(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	case S3Storage:
		if !f.cfg.S3Enabled() {
			return nil, fmt.Errorf("s3 storage is not configured")
		}
		return storage.NewS3SourceFromEnv(ctx, f.cfg.S3Region)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateRouter registers every configured source under its schemes.
func (f *storageFactory) CreateRouter(ctx context.Context) (*storage.Router, error) {
	router := storage.NewRouter()

	httpSource, err := f.CreateStorage(ctx, HTTPStorage)
	if err != nil {
		return nil, err
	}
	router.Register(httpSource, "http", "https")

	if f.cfg.AzureEnabled() {
		azureSource, err := f.CreateStorage(ctx, AzureStorage)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure source: %w", err)
		}
		router.Register(azureSource, storage.AzureScheme)
	}
	if f.cfg.S3Enabled() {
		s3Source, err := f.CreateStorage(ctx, S3Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 source: %w", err)
		}
		router.Register(s3Source, storage.S3Scheme)
	}
	return router, nil
}

// NewRefValidator guards references coming from API callers: the schemes
// of the configured sources, the configured HTTP hosts, and local files only
// under LocalRoot.
func NewRefValidator(cfg *config.Config) *validation.RefValidator {
	return validation.NewRefValidatorWithOptions(cfg.AllowedSchemes(), cfg.AllowedHosts).
		WithLocalRoot(cfg.LocalRoot)
}

// NewBaselineRefValidator guards the startup baseline scan, which only reads
// local files under BaselineDir.
func NewBaselineRefValidator(cfg *config.Config) *validation.RefValidator {
	return validation.NewLocalRefValidator(cfg.BaselineDir)
}
