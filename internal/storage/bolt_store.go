package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/mealbook/internal/domain"
)

const (
	mealBucket        = "meals"
	fingerprintBucket = "fingerprints"
	expiryValueBytes  = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	fingerprintTTL  time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{mealBucket, fingerprintBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		fingerprintTTL:  opts.FingerprintTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// GetMeal loads a meal by id.
func (b *boltStore) GetMeal(id string) (domain.Meal, bool, error) {
	var (
		meal  domain.Meal
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(mealBucket))
		if bucket == nil {
			return fmt.Errorf("meal bucket missing")
		}
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &meal); err != nil {
			return fmt.Errorf("decode meal %q: %w", id, err)
		}
		found = true
		return nil
	})
	return meal, found, err
}

// PutMeal inserts or replaces a meal keyed by its id.
func (b *boltStore) PutMeal(meal domain.Meal) error {
	if meal.ID == "" {
		return errEmptyID
	}
	raw, err := json.Marshal(meal)
	if err != nil {
		return fmt.Errorf("encode meal %q: %w", meal.ID, err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(mealBucket))
		if bucket == nil {
			return fmt.Errorf("meal bucket missing")
		}
		return bucket.Put([]byte(meal.ID), raw)
	})
}

// DeleteMeal removes a meal and its fingerprint, reporting whether it existed.
func (b *boltStore) DeleteMeal(id string) (bool, error) {
	var existed bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(mealBucket))
		if bucket == nil {
			return fmt.Errorf("meal bucket missing")
		}
		key := []byte(id)
		existed = bucket.Get(key) != nil
		if err := bucket.Delete(key); err != nil {
			return err
		}
		if fps := tx.Bucket([]byte(fingerprintBucket)); fps != nil {
			return fps.Delete(key)
		}
		return nil
	})
	return existed, err
}

// ListMeals returns all stored meals ordered by id.
func (b *boltStore) ListMeals() ([]domain.Meal, error) {
	var meals []domain.Meal
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(mealBucket))
		if bucket == nil {
			return fmt.Errorf("meal bucket missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var meal domain.Meal
			if err := json.Unmarshal(v, &meal); err != nil {
				return fmt.Errorf("decode meal %q: %w", k, err)
			}
			meals = append(meals, meal)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortByID(meals)
	return meals, nil
}

// Fingerprint returns the last recorded fingerprint for a meal, ignoring expired entries.
func (b *boltStore) Fingerprint(id string) (string, bool, error) {
	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return "", false, err
	}

	var (
		fp    string
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fingerprintBucket))
		if bucket == nil {
			return fmt.Errorf("fingerprint bucket missing")
		}

		key := []byte(id)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(time.Now()) {
			return bucket.Delete(key)
		}

		fp = string(value[expiryValueBytes:])
		found = true
		return nil
	})
	return fp, found, err
}

// MarkFingerprint records the fingerprint for a meal with a fresh expiry.
func (b *boltStore) MarkFingerprint(id, fingerprint string) error {
	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fingerprintBucket))
		if bucket == nil {
			return fmt.Errorf("fingerprint bucket missing")
		}
		buf := make([]byte, expiryValueBytes, expiryValueBytes+len(fingerprint))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.fingerprintTTL).Unix()))
		buf = append(buf, fingerprint...)
		return bucket.Put([]byte(id), buf)
	})
}

// maybeCleanupExpired removes expired fingerprints on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fingerprintBucket))
		if bucket == nil {
			return fmt.Errorf("fingerprint bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry prefix of a stored fingerprint value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func sortByID(meals []domain.Meal) {
	sort.SliceStable(meals, func(i, j int) bool { return meals[i].ID < meals[j].ID })
}
