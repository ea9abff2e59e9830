package syncer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/internal/storage"
	"github.com/samvad-hq/mealbook/pkg/meals"
	"github.com/samvad-hq/mealbook/pkg/publishers"
)

// fakeLister serves meals in pages and records the requested params.
type fakeLister struct {
	meals  []domain.Meal
	failAt int
	calls  []domain.MealListParams
}

func (f *fakeLister) ListMeals(_ context.Context, p domain.MealListParams) (meals.MealPage, error) {
	f.calls = append(f.calls, p)
	if f.failAt > 0 && p.Page == f.failAt {
		return meals.MealPage{}, errors.New("upstream down")
	}
	start := (p.Page - 1) * p.Limit
	if start > len(f.meals) {
		start = len(f.meals)
	}
	end := start + p.Limit
	if end > len(f.meals) {
		end = len(f.meals)
	}
	return meals.MealPage{
		Items:   f.meals[start:end],
		Total:   len(f.meals),
		Page:    p.Page,
		Limit:   p.Limit,
		HasMore: end < len(f.meals),
	}, nil
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu      sync.Mutex
	events  []publishers.Event
	errOnID string
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.MealID == f.errOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

func (f *fakePublisher) types() string {
	parts := make([]string, len(f.events))
	for i, e := range f.events {
		parts[i] = e.Type + ":" + e.MealID
	}
	return strings.Join(parts, ",")
}

func meal(id, name string) domain.Meal {
	return domain.Meal{BaseEntity: domain.BaseEntity{ID: id}, Name: name, Category: domain.CategoryLunch}
}

func newMemoryStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewStore(storage.TypeMemory, "", storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunPagesAndPublishesNewMeals(t *testing.T) {
	lister := &fakeLister{meals: []domain.Meal{meal("1", "a"), meal("2", "b"), meal("3", "c")}}
	store := newMemoryStore(t)
	pub := &fakePublisher{}

	res, err := NewService(lister, store, pub, nil, 2).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Pages != 2 || res.Seen != 3 || res.Created != 3 || res.Published != 3 {
		t.Fatalf("result = %+v", res)
	}
	if len(lister.calls) != 2 || lister.calls[1].Page != 2 || lister.calls[0].Limit != 2 {
		t.Fatalf("calls = %+v", lister.calls)
	}
	if got := pub.types(); got != "meal.created:1,meal.created:2,meal.created:3" {
		t.Fatalf("events = %s", got)
	}
	if _, ok, _ := store.GetMeal("2"); !ok {
		t.Fatalf("meal 2 not stored")
	}
}

func TestRunSkipsUnchangedAndDetectsUpdates(t *testing.T) {
	lister := &fakeLister{meals: []domain.Meal{meal("1", "a"), meal("2", "b")}}
	store := newMemoryStore(t)
	svc := NewService(lister, store, &fakePublisher{}, nil, 10)

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	lister.meals[1].Name = "b2"
	pub := &fakePublisher{}
	svc.publisher = pub
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := pub.types(); got != "meal.updated:2" {
		t.Fatalf("events = %s", got)
	}
}

func TestRunPrunesMealsRemovedUpstream(t *testing.T) {
	lister := &fakeLister{meals: []domain.Meal{meal("1", "a"), meal("2", "b")}}
	store := newMemoryStore(t)
	svc := NewService(lister, store, nil, nil, 10)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	lister.meals = lister.meals[:1]
	pub := &fakePublisher{}
	svc.publisher = pub
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Deleted != 1 || pub.types() != "meal.deleted:2" {
		t.Fatalf("result = %+v events = %s", res, pub.types())
	}
	if _, ok, _ := store.GetMeal("2"); ok {
		t.Fatalf("meal 2 should be removed")
	}
}

func TestRunKeepsLocalMealsWhenListingFails(t *testing.T) {
	store := newMemoryStore(t)
	_ = store.PutMeal(meal("9", "local"))

	lister := &fakeLister{meals: []domain.Meal{meal("1", "a"), meal("2", "b")}, failAt: 2}
	res, err := NewService(lister, store, nil, nil, 1).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "page 2") {
		t.Fatalf("expected listing error, got %v", err)
	}
	if res.Deleted != 0 {
		t.Fatalf("no meals should be pruned, got %+v", res)
	}
	if _, ok, _ := store.GetMeal("9"); !ok {
		t.Fatalf("local meal removed after failed listing")
	}
}

func TestRunAggregatesPublishErrorsAndRetriesNextPass(t *testing.T) {
	lister := &fakeLister{meals: []domain.Meal{meal("ok", "a"), meal("bad", "b")}}
	store := newMemoryStore(t)
	pub := &fakePublisher{errOnID: "bad"}
	svc := NewService(lister, store, pub, nil, 10)

	_, err := svc.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error mentioning bad meal, got %v", err)
	}
	if _, seen, _ := store.Fingerprint("bad"); seen {
		t.Fatalf("failed meal should not be marked")
	}

	pub.errOnID = ""
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("retry Run: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("expected failed meal to be retried, got %+v", res)
	}
}

func TestRunSkipsUnchangedMealsAfterFingerprintExpiry(t *testing.T) {
	store, err := storage.NewStore(storage.TypeMemory, "", storage.Options{FingerprintTTL: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	lister := &fakeLister{meals: []domain.Meal{meal("m1", "Pancakes")}}
	pub := &fakePublisher{}
	svc := NewService(lister, store, pub, nil, 10)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.Created != 0 || res.Updated != 0 || res.Published != 0 {
		t.Fatalf("unchanged meal re-announced: %+v", res)
	}
	if got := pub.types(); got != "meal.created:m1" {
		t.Fatalf("events = %s", got)
	}
	if _, seen, _ := store.Fingerprint("m1"); !seen {
		t.Fatalf("fingerprint should be refreshed for unchanged meal")
	}
}

func TestRunUsesStoreToTellUpdatesFromCreates(t *testing.T) {
	store := newMemoryStore(t)
	_ = store.PutMeal(meal("1", "old name"))

	lister := &fakeLister{meals: []domain.Meal{meal("1", "new name")}}
	pub := &fakePublisher{}
	res, err := NewService(lister, store, pub, nil, 10).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Updated != 1 || res.Created != 0 || pub.types() != "meal.updated:1" {
		t.Fatalf("result = %+v events = %s", res, pub.types())
	}
	if got, _, _ := store.GetMeal("1"); got.Name != "new name" {
		t.Fatalf("stored name = %q", got.Name)
	}
}

func TestRunLeavesStoreUntouchedWhenPublishFails(t *testing.T) {
	store := newMemoryStore(t)
	pub := &fakePublisher{errOnID: "1"}
	lister := &fakeLister{meals: []domain.Meal{meal("1", "a")}}

	if _, err := NewService(lister, store, pub, nil, 10).Run(context.Background()); err == nil {
		t.Fatalf("expected publish error")
	}
	if _, ok, _ := store.GetMeal("1"); ok {
		t.Fatalf("meal stored despite failed publish")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lister := &fakeLister{meals: []domain.Meal{meal("1", "a")}}
	res, err := NewService(lister, newMemoryStore(t), nil, nil, 10).Run(ctx)
	if err != nil || res.Pages != 0 || len(lister.calls) != 0 {
		t.Fatalf("expected no work on cancelled context, got %+v %v", res, err)
	}
}

func TestRunRequiresSourceAndStore(t *testing.T) {
	if _, err := NewService(nil, nil, nil, nil, 0).Run(context.Background()); err == nil {
		t.Fatalf("expected error for uninitialized syncer")
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a, _ := Fingerprint(meal("1", "a"))
	b, _ := Fingerprint(meal("1", "a"))
	c, _ := Fingerprint(meal("1", "c"))
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("fingerprints a=%s b=%s c=%s", a, b, c)
	}
}
