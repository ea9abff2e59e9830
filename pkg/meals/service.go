package meals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/internal/storage"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

// ErrInvalidInput is returned when a call is rejected before reaching the source.
var ErrInvalidInput = errors.New("invalid input")

// Service is the meals API used by commands and the syncer. It validates input,
// delegates to a Source and logs failures.
type Service struct {
	src Source
	log Logger
}

var _ Source = (*Service)(nil)

// NewService wraps src. A nil logger disables logging.
func NewService(src Source, log Logger) *Service {
	return &Service{src: src, log: ensureLogger(log)}
}

// Select returns a RemoteSource when the client has a base URL and an
// OfflineSource over store otherwise.
func Select(client *httpclient.APIClient, store storage.Store) Source {
	if client != nil && strings.TrimSpace(client.BaseURL()) != "" {
		return NewRemoteSource(client)
	}
	return NewOfflineSource(store)
}

func (s *Service) ListMeals(ctx context.Context, params domain.MealListParams) (MealPage, error) {
	if err := validateListParams(params); err != nil {
		return MealPage{}, err
	}
	page, err := s.src.ListMeals(ctx, params)
	if err != nil {
		s.fail("list meals failed", params, err)
		return MealPage{}, err
	}
	return page, nil
}

func (s *Service) GetMeal(ctx context.Context, id string) (domain.Meal, error) {
	if err := validateID(id); err != nil {
		return domain.Meal{}, err
	}
	meal, err := s.src.GetMeal(ctx, id)
	if err != nil {
		s.fail("get meal failed", map[string]any{"id": id}, err)
		return domain.Meal{}, err
	}
	return meal, nil
}

func (s *Service) CreateMeal(ctx context.Context, req domain.CreateMealRequest) (domain.Meal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return domain.Meal{}, fmt.Errorf("%w: meal name is required", ErrInvalidInput)
	}
	if !req.Category.Valid() {
		return domain.Meal{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}
	meal, err := s.src.CreateMeal(ctx, req)
	if err != nil {
		s.fail("create meal failed", map[string]any{"name": req.Name}, err)
		return domain.Meal{}, err
	}
	s.log.InfoObj("meal created", "meal", map[string]any{"id": meal.ID, "name": meal.Name})
	return meal, nil
}

func (s *Service) UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest) (domain.Meal, error) {
	if err := validateID(id); err != nil {
		return domain.Meal{}, err
	}
	if req.Empty() {
		return domain.Meal{}, fmt.Errorf("%w: update has no fields", ErrInvalidInput)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.Meal{}, fmt.Errorf("%w: meal name cannot be blank", ErrInvalidInput)
	}
	if req.Category != nil && !req.Category.Valid() {
		return domain.Meal{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
	}
	meal, err := s.src.UpdateMeal(ctx, id, req)
	if err != nil {
		s.fail("update meal failed", map[string]any{"id": id}, err)
		return domain.Meal{}, err
	}
	return meal, nil
}

func (s *Service) DeleteMeal(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.src.DeleteMeal(ctx, id); err != nil {
		s.fail("delete meal failed", map[string]any{"id": id}, err)
		return err
	}
	return nil
}

func (s *Service) ListMealsByCategory(ctx context.Context, category domain.MealCategory, params domain.MealListParams) (MealPage, error) {
	if !category.Valid() {
		return MealPage{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	if err := validateListParams(params); err != nil {
		return MealPage{}, err
	}
	page, err := s.src.ListMealsByCategory(ctx, category, params)
	if err != nil {
		s.fail("list meals by category failed", map[string]any{"category": category}, err)
		return MealPage{}, err
	}
	return page, nil
}

func (s *Service) fail(msg string, input any, err error) {
	s.log.WarnObj(msg, "details", map[string]any{
		"input":  input,
		"status": httpclient.StatusOf(err),
		"error":  err.Error(),
	})
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: meal id is required", ErrInvalidInput)
	}
	return nil
}

func validateListParams(p domain.MealListParams) error {
	switch {
	case p.Page < 0:
		return fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	case p.Limit < 0:
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	case p.Category != "" && !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	case p.SortBy != "" && p.SortBy != domain.SortByName && p.SortBy != domain.SortByCreatedAt:
		return fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, p.SortBy)
	case p.SortOrder != "" && p.SortOrder != domain.SortAsc && p.SortOrder != domain.SortDesc:
		return fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, p.SortOrder)
	}
	return nil
}
