package meals

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/internal/storage"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// OfflineSource serves meals from the local store when no API is configured.
type OfflineSource struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

var _ Source = (*OfflineSource)(nil)

// NewOfflineSource builds a Source over a local store.
func NewOfflineSource(store storage.Store) *OfflineSource {
	return &OfflineSource{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// ListMeals filters, sorts and pages the stored meals.
func (o *OfflineSource) ListMeals(ctx context.Context, params domain.MealListParams) (MealPage, error) {
	if err := ctx.Err(); err != nil {
		return MealPage{}, err
	}
	all, err := o.store.ListMeals()
	if err != nil {
		return MealPage{}, fmt.Errorf("list stored meals: %w", err)
	}

	filtered := all
	if params.Category != "" {
		filtered = filterByCategory(filtered, params.Category)
	}
	filtered = FilterBySearch(filtered, params.Search)
	if params.SortBy != "" || params.SortOrder != "" {
		filtered = SortMeals(filtered, params.SortBy, params.SortOrder)
	}
	return paginate(filtered, params.Page, params.Limit), nil
}

// ListMealsByCategory is ListMeals restricted to one category.
func (o *OfflineSource) ListMealsByCategory(ctx context.Context, category domain.MealCategory, params domain.MealListParams) (MealPage, error) {
	params.Category = category
	return o.ListMeals(ctx, params)
}

// GetMeal returns a stored meal or a 404 ClientError.
func (o *OfflineSource) GetMeal(ctx context.Context, id string) (domain.Meal, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meal{}, err
	}
	meal, ok, err := o.store.GetMeal(id)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("load meal %s: %w", id, err)
	}
	if !ok {
		return domain.Meal{}, errMealNotFound(id)
	}
	return meal, nil
}

// CreateMeal stores a new meal with a generated id and fresh timestamps.
func (o *OfflineSource) CreateMeal(ctx context.Context, req domain.CreateMealRequest) (domain.Meal, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meal{}, err
	}
	ts := o.timestamp()
	meal := domain.Meal{
		BaseEntity:      domain.BaseEntity{ID: o.newID(), CreatedAt: ts, UpdatedAt: ts},
		Name:            req.Name,
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Category:        req.Category,
		Ingredients:     append([]string(nil), req.Ingredients...),
		NutritionalInfo: req.NutritionalInfo,
	}
	if meal.Ingredients == nil {
		meal.Ingredients = []string{}
	}
	if err := o.store.PutMeal(meal); err != nil {
		return domain.Meal{}, fmt.Errorf("store meal: %w", err)
	}
	return meal, nil
}

// UpdateMeal applies a partial update to a stored meal.
func (o *OfflineSource) UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest) (domain.Meal, error) {
	current, err := o.GetMeal(ctx, id)
	if err != nil {
		return domain.Meal{}, err
	}
	updated := req.Apply(current)
	updated.UpdatedAt = o.timestamp()
	if err := o.store.PutMeal(updated); err != nil {
		return domain.Meal{}, fmt.Errorf("store meal: %w", err)
	}
	return updated, nil
}

// DeleteMeal removes a stored meal or returns a 404 ClientError.
func (o *OfflineSource) DeleteMeal(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existed, err := o.store.DeleteMeal(id)
	if err != nil {
		return fmt.Errorf("delete meal %s: %w", id, err)
	}
	if !existed {
		return errMealNotFound(id)
	}
	return nil
}

func (o *OfflineSource) timestamp() string {
	return o.now().UTC().Format(time.RFC3339Nano)
}

func errMealNotFound(id string) error {
	return &httpclient.ClientError{
		Message: "Meal not found",
		Status:  http.StatusNotFound,
		Data:    map[string]any{"message": "Meal not found", "id": id},
	}
}

func filterByCategory(meals []domain.Meal, category domain.MealCategory) []domain.Meal {
	out := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// paginate slices meals into a 1-based page.
func paginate(meals []domain.Meal, page, limit int) MealPage {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	total := len(meals)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	items := make([]domain.Meal, end-start)
	copy(items, meals[start:end])
	return MealPage{
		Items:   items,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: end < total,
	}
}
