package domain

// Domain contains core models shared by the API, store and sync layers.

// BaseEntity carries the fields every persisted record has.
type BaseEntity struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// MealCategory classifies a meal.
type MealCategory string

const (
	CategoryBreakfast MealCategory = "breakfast"
	CategoryLunch     MealCategory = "lunch"
	CategoryDinner    MealCategory = "dinner"
	CategorySnack     MealCategory = "snack"
	CategoryDessert   MealCategory = "dessert"
	CategoryBeverage  MealCategory = "beverage"
)

// Categories lists every known category in display order.
func Categories() []MealCategory {
	return []MealCategory{
		CategoryBreakfast,
		CategoryLunch,
		CategoryDinner,
		CategorySnack,
		CategoryDessert,
		CategoryBeverage,
	}
}

// Valid reports whether c is one of the known categories.
func (c MealCategory) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// NutritionalInfo holds per-serving nutrition; macros are in grams.
type NutritionalInfo struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
}

type Meal struct {
	BaseEntity
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Category        MealCategory     `json:"category"`
	Ingredients     []string         `json:"ingredients"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty"`
}

// CreateMealRequest is a Meal without server-assigned fields.
type CreateMealRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	Category        MealCategory     `json:"category"`
	Ingredients     []string         `json:"ingredients"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty"`
}

// UpdateMealRequest is a partial update; nil fields are left untouched.
type UpdateMealRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	Category        *MealCategory    `json:"category,omitempty"`
	Ingredients     []string         `json:"ingredients,omitempty"`
	NutritionalInfo *NutritionalInfo `json:"nutritionalInfo,omitempty"`
}

// Empty reports whether the update carries no changes.
func (u UpdateMealRequest) Empty() bool {
	return u.Name == nil && u.Description == nil && u.ImageURL == nil &&
		u.Category == nil && u.Ingredients == nil && u.NutritionalInfo == nil
}

// Apply returns a copy of m with the update's fields applied.
func (u UpdateMealRequest) Apply(m Meal) Meal {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.ImageURL != nil {
		m.ImageURL = *u.ImageURL
	}
	if u.Category != nil {
		m.Category = *u.Category
	}
	if u.Ingredients != nil {
		m.Ingredients = append([]string(nil), u.Ingredients...)
	}
	if u.NutritionalInfo != nil {
		ni := *u.NutritionalInfo
		m.NutritionalInfo = &ni
	}
	return m
}

const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// MealListParams filters and pages a meal listing. Zero values mean "not set".
type MealListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Category  MealCategory
	Search    string
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}
