package storage

import (
	"testing"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
)

func TestBoltStoreMarksAndExpiresFingerprints(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		FingerprintTTL:  1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/cache.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	_, seen, err := store.Fingerprint("id1")
	if err != nil || seen {
		t.Fatalf("expected no fingerprint, seen=%v err=%v", seen, err)
	}

	if err := store.MarkFingerprint("id1", "abc"); err != nil {
		t.Fatalf("MarkFingerprint: %v", err)
	}

	fp, seen, err := store.Fingerprint("id1")
	if err != nil || !seen || fp != "abc" {
		t.Fatalf("expected fingerprint abc, got fp=%q seen=%v err=%v", fp, seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, seen, err = store.Fingerprint("id1")
	if err != nil {
		t.Fatalf("Fingerprint after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestBoltStoreMealCRUD(t *testing.T) {
	store, err := NewStore(TypeBBolt, t.TempDir()+"/nested/meals.db", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	meal := domain.Meal{
		BaseEntity:  domain.BaseEntity{ID: "m1"},
		Name:        "Soup",
		Category:    domain.CategoryDinner,
		Ingredients: []string{"water", "salt"},
	}
	if err := store.PutMeal(meal); err != nil {
		t.Fatalf("PutMeal: %v", err)
	}
	if err := store.MarkFingerprint("m1", "fp"); err != nil {
		t.Fatalf("MarkFingerprint: %v", err)
	}

	got, ok, err := store.GetMeal("m1")
	if err != nil || !ok {
		t.Fatalf("GetMeal ok=%v err=%v", ok, err)
	}
	if got.Name != "Soup" || len(got.Ingredients) != 2 {
		t.Fatalf("unexpected meal %+v", got)
	}

	if err := store.PutMeal(domain.Meal{BaseEntity: domain.BaseEntity{ID: "a0"}, Name: "Tea"}); err != nil {
		t.Fatalf("PutMeal: %v", err)
	}
	all, err := store.ListMeals()
	if err != nil || len(all) != 2 || all[0].ID != "a0" {
		t.Fatalf("ListMeals = %+v err=%v", all, err)
	}

	existed, err := store.DeleteMeal("m1")
	if err != nil || !existed {
		t.Fatalf("DeleteMeal existed=%v err=%v", existed, err)
	}
	if _, ok, _ := store.GetMeal("m1"); ok {
		t.Fatalf("meal still present after delete")
	}
	if _, ok, _ := store.Fingerprint("m1"); ok {
		t.Fatalf("fingerprint still present after delete")
	}
	existed, err = store.DeleteMeal("m1")
	if err != nil || existed {
		t.Fatalf("second DeleteMeal existed=%v err=%v", existed, err)
	}
}

func TestPutMealRequiresID(t *testing.T) {
	store, err := NewStore(TypeMemory, "", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.PutMeal(domain.Meal{Name: "nameless"}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkFingerprint("x", "y"); err != nil {
		t.Fatalf("noop store MarkFingerprint: %v", err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore(TypeBBolt, " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}

func TestMemoryStoreExpiresFingerprints(t *testing.T) {
	store := newMemoryStore(Options{FingerprintTTL: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	if err := store.MarkFingerprint("m1", "fp"); err != nil {
		t.Fatalf("MarkFingerprint: %v", err)
	}
	if fp, ok, _ := store.Fingerprint("m1"); !ok || fp != "fp" {
		t.Fatalf("Fingerprint = %q %v", fp, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Fingerprint("m1"); ok {
		t.Fatalf("expected fingerprint to expire")
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := newMemoryStore(Options{})
	if err := store.PutMeal(domain.Meal{BaseEntity: domain.BaseEntity{ID: "m1"}, Ingredients: []string{"a"}}); err != nil {
		t.Fatalf("PutMeal: %v", err)
	}
	got, _, _ := store.GetMeal("m1")
	got.Ingredients[0] = "mutated"

	again, _, _ := store.GetMeal("m1")
	if again.Ingredients[0] != "a" {
		t.Fatalf("store state mutated through returned meal")
	}
}

func TestSeedFixturesOnlyFillsEmptyStore(t *testing.T) {
	store := newMemoryStore(Options{})
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	n, err := SeedFixtures(store, now)
	if err != nil || n != 10 {
		t.Fatalf("SeedFixtures = %d, %v", n, err)
	}
	meal, ok, _ := store.GetMeal("5")
	if !ok || meal.Name != "Fresh Orange Juice" || meal.NutritionalInfo != nil {
		t.Fatalf("fixture 5 = %+v", meal)
	}
	if meal.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("CreatedAt = %q", meal.CreatedAt)
	}

	n, err = SeedFixtures(store, now)
	if err != nil || n != 0 {
		t.Fatalf("second SeedFixtures = %d, %v", n, err)
	}
}
