package syncer

import (
	"context"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/meals"
	"github.com/samvad-hq/mealbook/pkg/publishers"
)

// MealLister pages through the remote meal catalogue.
type MealLister interface {
	ListMeals(ctx context.Context, params domain.MealListParams) (meals.MealPage, error)
}

// Store is the subset of storage.Store the syncer mirrors into.
type Store interface {
	GetMeal(id string) (domain.Meal, bool, error)
	PutMeal(meal domain.Meal) error
	DeleteMeal(id string) (bool, error)
	ListMeals() ([]domain.Meal, error)
	Fingerprint(id string) (string, bool, error)
	MarkFingerprint(id, fingerprint string) error
}

// EventPublisher publishes change events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Logger defines the logging surface the syncer relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}
