package app

import (
	"fmt"
	"time"

	"github.com/samvad-hq/mealbook/internal/config"
	"github.com/samvad-hq/mealbook/internal/logger"
	"github.com/samvad-hq/mealbook/internal/storage"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

// NewAPIClient builds the meals API client from config. Extra headers are applied
// before the auth token so a configured Authorization header cannot mask it.
func NewAPIClient(cfg *config.Config, log logger.Logger, opts ...httpclient.Option) *httpclient.APIClient {
	base := []httpclient.Option{
		httpclient.WithBaseURL(cfg.APIURL),
		httpclient.WithTimeout(cfg.APITimeout),
		httpclient.WithLogger(logger.Ensure(log)),
		httpclient.WithDefaultHeaders(cfg.APIHeaders),
		httpclient.WithAuthToken(cfg.APIToken),
	}
	return httpclient.New(append(base, opts...)...)
}

// OpenStore initializes the configured store. In offline mode an empty store is
// seeded with the sample catalogue when enabled.
func OpenStore(cfg *config.Config, log logger.Logger) (storage.Store, error) {
	log = logger.Ensure(log)

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		FingerprintTTL:  cfg.FingerprintTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"fingerprint_ttl_seconds":  int(cfg.FingerprintTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	if cfg.Offline() && cfg.SeedFixtures {
		n, err := storage.SeedFixtures(store, time.Now())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed fixtures: %w", err)
		}
		if n > 0 {
			log.InfoObj("sample meals seeded", "seeded", n)
		}
	}
	return store, nil
}
