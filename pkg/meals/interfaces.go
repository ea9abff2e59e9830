package meals

import (
	"context"

	"github.com/samvad-hq/mealbook/internal/domain"
)

// MealPage is one page of a meal listing.
type MealPage = domain.PaginatedResponse[domain.Meal]

// Source serves meal records, either from the remote API or from the local store.
type Source interface {
	ListMeals(ctx context.Context, params domain.MealListParams) (MealPage, error)
	GetMeal(ctx context.Context, id string) (domain.Meal, error)
	CreateMeal(ctx context.Context, req domain.CreateMealRequest) (domain.Meal, error)
	UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest) (domain.Meal, error)
	DeleteMeal(ctx context.Context, id string) error
	ListMealsByCategory(ctx context.Context, category domain.MealCategory, params domain.MealListParams) (MealPage, error)
}

// Logger defines the logging surface the meals service relies on.
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

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
