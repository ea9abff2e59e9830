package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
)

// Package storage provides the local meal store used offline and by the syncer.

// Store persists meals and the fingerprints the syncer uses for change detection.
type Store interface {
	Close() error
	GetMeal(id string) (domain.Meal, bool, error)
	PutMeal(meal domain.Meal) error
	DeleteMeal(id string) (bool, error)
	ListMeals() ([]domain.Meal, error)
	Fingerprint(id string) (string, bool, error)
	MarkFingerprint(id, fingerprint string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	FingerprintTTL  time.Duration
	CleanupInterval time.Duration
}

const (
	TypeBBolt  = "bbolt"
	TypeMemory = "memory"

	defaultFingerprintTTL  = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.FingerprintTTL <= 0 {
		opts.FingerprintTTL = defaultFingerprintTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) GetMeal(string) (domain.Meal, bool, error) { return domain.Meal{}, false, nil }
func (noopStore) PutMeal(domain.Meal) error                 { return nil }
func (noopStore) DeleteMeal(string) (bool, error)           { return false, nil }
func (noopStore) ListMeals() ([]domain.Meal, error)         { return nil, nil }
func (noopStore) Fingerprint(string) (string, bool, error)  { return "", false, nil }
func (noopStore) MarkFingerprint(string, string) error      { return nil }
