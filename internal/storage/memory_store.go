package storage

import (
	"sync"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
)

type fingerprintEntry struct {
	value   string
	expires time.Time
}

// memoryStore keeps everything in process memory; contents are lost on Close.
type memoryStore struct {
	mu           sync.RWMutex
	meals        map[string]domain.Meal
	fingerprints map[string]fingerprintEntry
	ttl          time.Duration
	now          func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		meals:        make(map[string]domain.Meal),
		fingerprints: make(map[string]fingerprintEntry),
		ttl:          opts.FingerprintTTL,
		now:          time.Now,
	}
}

func (m *memoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meals = make(map[string]domain.Meal)
	m.fingerprints = make(map[string]fingerprintEntry)
	return nil
}

func (m *memoryStore) GetMeal(id string) (domain.Meal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meal, ok := m.meals[id]
	return cloneMeal(meal), ok, nil
}

func (m *memoryStore) PutMeal(meal domain.Meal) error {
	if meal.ID == "" {
		return errEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meals[meal.ID] = cloneMeal(meal)
	return nil
}

func (m *memoryStore) DeleteMeal(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.meals[id]
	delete(m.meals, id)
	delete(m.fingerprints, id)
	return ok, nil
}

func (m *memoryStore) ListMeals() ([]domain.Meal, error) {
	m.mu.RLock()
	out := make([]domain.Meal, 0, len(m.meals))
	for _, meal := range m.meals {
		out = append(out, cloneMeal(meal))
	}
	m.mu.RUnlock()
	sortByID(out)
	return out, nil
}

func (m *memoryStore) Fingerprint(id string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.fingerprints[id]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.After(m.now()) {
		delete(m.fingerprints, id)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *memoryStore) MarkFingerprint(id, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprints[id] = fingerprintEntry{value: fingerprint, expires: m.now().Add(m.ttl)}
	return nil
}

// cloneMeal copies the slice and pointer fields so callers cannot mutate stored state.
func cloneMeal(meal domain.Meal) domain.Meal {
	if meal.Ingredients != nil {
		meal.Ingredients = append([]string(nil), meal.Ingredients...)
	}
	if meal.NutritionalInfo != nil {
		ni := *meal.NutritionalInfo
		if ni.Fiber != nil {
			f := *ni.Fiber
			ni.Fiber = &f
		}
		meal.NutritionalInfo = &ni
	}
	return meal
}
