package meals

import (
	"sort"
	"strings"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
)

var categoryDisplayNames = map[domain.MealCategory]string{
	domain.CategoryBreakfast: "Breakfast",
	domain.CategoryLunch:     "Lunch",
	domain.CategoryDinner:    "Dinner",
	domain.CategorySnack:     "Snacks",
	domain.CategoryDessert:   "Desserts",
	domain.CategoryBeverage:  "Beverages",
}

// CategoryDisplayName returns the label for a category, or the raw value when unknown.
func CategoryDisplayName(category domain.MealCategory) string {
	if name, ok := categoryDisplayNames[category]; ok {
		return name
	}
	return string(category)
}

// FilterBySearch keeps meals whose name, description or any ingredient contains the
// query, ignoring case. A blank query returns meals unchanged.
func FilterBySearch(meals []domain.Meal, query string) []domain.Meal {
	if strings.TrimSpace(query) == "" {
		return meals
	}
	q := strings.ToLower(query)
	out := make([]domain.Meal, 0, len(meals))
	for _, m := range meals {
		if matchesSearch(m, q) {
			out = append(out, m)
		}
	}
	return out
}

func matchesSearch(m domain.Meal, q string) bool {
	if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Description), q) {
		return true
	}
	for _, ing := range m.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

// SortMeals returns a sorted copy. sortBy is "name" (default) or "createdAt";
// order is "asc" (default) or "desc".
func SortMeals(meals []domain.Meal, sortBy, order string) []domain.Meal {
	out := append([]domain.Meal(nil), meals...)
	desc := order == domain.SortDesc

	var less func(a, b domain.Meal) int
	switch sortBy {
	case domain.SortByCreatedAt:
		less = func(a, b domain.Meal) int { return compareTimes(a.CreatedAt, b.CreatedAt) }
	default:
		less = func(a, b domain.Meal) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compareTimes orders RFC3339 timestamps; unparseable values sort first.
func compareTimes(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return ta.Compare(tb)
}
