package meals

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

// RemoteSource talks to the meals REST API through an APIClient.
type RemoteSource struct {
	client *httpclient.APIClient
}

var _ Source = (*RemoteSource)(nil)

// NewRemoteSource builds a Source backed by the given client.
func NewRemoteSource(client *httpclient.APIClient) *RemoteSource {
	return &RemoteSource{client: client}
}

// ListMeals fetches GET /meals with the listing params as query string.
func (r *RemoteSource) ListMeals(ctx context.Context, params domain.MealListParams) (MealPage, error) {
	page, _, err := httpclient.Do[MealPage](ctx, r.client, "/meals", httpclient.RequestConfig{
		Query: listQuery(params),
	})
	return page, err
}

// GetMeal fetches GET /meals/{id}.
func (r *RemoteSource) GetMeal(ctx context.Context, id string) (domain.Meal, error) {
	meal, _, err := httpclient.Do[domain.Meal](ctx, r.client, mealPath(id), httpclient.RequestConfig{})
	return meal, err
}

// CreateMeal posts to /meals.
func (r *RemoteSource) CreateMeal(ctx context.Context, req domain.CreateMealRequest) (domain.Meal, error) {
	meal, _, err := httpclient.Do[domain.Meal](ctx, r.client, "/meals", httpclient.RequestConfig{
		Method: http.MethodPost,
		Body:   req,
	})
	return meal, err
}

// UpdateMeal patches /meals/{id}.
func (r *RemoteSource) UpdateMeal(ctx context.Context, id string, req domain.UpdateMealRequest) (domain.Meal, error) {
	meal, _, err := httpclient.Do[domain.Meal](ctx, r.client, mealPath(id), httpclient.RequestConfig{
		Method: http.MethodPatch,
		Body:   req,
	})
	return meal, err
}

// DeleteMeal deletes /meals/{id}; the response body is ignored.
func (r *RemoteSource) DeleteMeal(ctx context.Context, id string) error {
	_, err := r.client.Delete(ctx, mealPath(id))
	return err
}

// ListMealsByCategory fetches GET /meals/category/{category}.
func (r *RemoteSource) ListMealsByCategory(ctx context.Context, category domain.MealCategory, params domain.MealListParams) (MealPage, error) {
	endpoint := "/meals/category/" + url.PathEscape(string(category))
	page, _, err := httpclient.Do[MealPage](ctx, r.client, endpoint, httpclient.RequestConfig{
		Query: listQuery(params),
	})
	return page, err
}

func mealPath(id string) string {
	return fmt.Sprintf("/meals/%s", url.PathEscape(id))
}

// listQuery renders listing params in a fixed order, skipping unset values.
func listQuery(p domain.MealListParams) httpclient.Query {
	var q httpclient.Query
	if p.Page > 0 {
		q = q.Add("page", p.Page)
	}
	if p.Limit > 0 {
		q = q.Add("limit", p.Limit)
	}
	if p.SortBy != "" {
		q = q.Add("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		q = q.Add("sortOrder", p.SortOrder)
	}
	if p.Category != "" {
		q = q.Add("category", string(p.Category))
	}
	if p.Search != "" {
		q = q.Add("search", p.Search)
	}
	return q
}
