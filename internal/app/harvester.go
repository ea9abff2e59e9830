package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/mealbook/internal/config"
	"github.com/samvad-hq/mealbook/internal/logger"
	"github.com/samvad-hq/mealbook/internal/storage"
	"github.com/samvad-hq/mealbook/internal/syncer"
	"github.com/samvad-hq/mealbook/pkg/meals"
	"github.com/samvad-hq/mealbook/pkg/publishers"
)

// Harvester represents the meal sync runtime. It mirrors the remote catalogue
// into the local store on an interval and fans change events out to publishers.
type Harvester struct {
	cfg          *config.Config
	fanout       *publishers.Fanout
	syncService  *syncer.Service
	syncInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewHarvester builds a harvester runtime from config.
func NewHarvester(ctx context.Context, cfg *config.Config, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Offline() {
		return nil, fmt.Errorf("harvester needs an api url (set MEALBOOK_API_URL)")
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg, log)
	if err != nil {
		_ = fanout.Close()
		return nil, err
	}

	client := NewAPIClient(cfg, log)
	source := meals.NewService(meals.NewRemoteSource(client), log)

	return &Harvester{
		cfg:          cfg,
		fanout:       fanout,
		syncService:  syncer.NewService(source, store, fanout, log, cfg.SyncPageSize),
		syncInterval: cfg.SyncInterval,
		log:          log,
		store:        store,
	}, nil
}

// buildFanout loads the publishers file. Without one, events are dropped.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		log.WarnObj("no publishers file configured; change events will not be published", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run starts the sync loop until the context is cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.syncService == nil {
		return fmt.Errorf("harvester is not initialized")
	}
	defer h.closeAndLog()

	h.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"api_url":          h.cfg.APIURL,
		"publishers_count": h.fanout.Size(),
		"sync_interval":    h.syncInterval.String(),
	})

	if _, err := h.SyncOnce(ctx); err != nil {
		h.log.ErrorObj("initial sync failed", "error", err.Error())
	}

	ticker := time.NewTicker(h.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := h.SyncOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled sync failed", "error", err.Error())
			}
		}
	}
}

// SyncOnce performs a single sync pass and logs its outcome.
func (h *Harvester) SyncOnce(ctx context.Context) (syncer.Result, error) {
	if h == nil || h.syncService == nil {
		return syncer.Result{}, fmt.Errorf("harvester is not initialized")
	}
	start := time.Now()
	h.log.InfoObj("sync started", "sync_meta", map[string]any{
		"started_at": start.UTC(),
	})
	res, err := h.syncService.Run(ctx)
	h.log.InfoObj("sync finished", "sync_meta", map[string]any{
		"pages":      res.Pages,
		"seen":       res.Seen,
		"created":    res.Created,
		"updated":    res.Updated,
		"deleted":    res.Deleted,
		"published":  res.Published,
		"failed":     err != nil,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return res, err
}

// Close releases publishers and the storage backend.
func (h *Harvester) Close() error {
	if h == nil {
		return nil
	}
	var errs []error
	if err := h.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (h *Harvester) closeAndLog() {
	if err := h.Close(); err != nil {
		h.log.ErrorObj("harvester shutdown failed", "error", err.Error())
	}
}
