package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/mealbook/internal/domain"
)

var errEmptyID = errors.New("meal id is empty")

// SeedFixtures loads the sample meals into an empty store. It returns the number of
// meals written; a store that already holds meals is left untouched.
func SeedFixtures(store Store, now time.Time) (int, error) {
	existing, err := store.ListMeals()
	if err != nil {
		return 0, fmt.Errorf("list meals: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	meals := FixtureMeals(now)
	for _, meal := range meals {
		if err := store.PutMeal(meal); err != nil {
			return 0, fmt.Errorf("seed meal %s: %w", meal.ID, err)
		}
	}
	return len(meals), nil
}

// FixtureMeals returns the sample catalogue stamped with the given time.
func FixtureMeals(now time.Time) []domain.Meal {
	ts := now.UTC().Format(time.RFC3339Nano)
	mk := func(id, name, desc, image string, cat domain.MealCategory, ingredients []string, ni *domain.NutritionalInfo) domain.Meal {
		return domain.Meal{
			BaseEntity:      domain.BaseEntity{ID: id, CreatedAt: ts, UpdatedAt: ts},
			Name:            name,
			Description:     desc,
			ImageURL:        image,
			Category:        cat,
			Ingredients:     ingredients,
			NutritionalInfo: ni,
		}
	}
	nutrition := func(cal, protein, carbs, fat, fiber float64) *domain.NutritionalInfo {
		return &domain.NutritionalInfo{Calories: cal, Protein: protein, Carbs: carbs, Fat: fat, Fiber: &fiber}
	}

	return []domain.Meal{
		mk("1", "Classic Burger", "Juicy beef patty with fresh lettuce, tomato, and special sauce",
			"https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=400", domain.CategoryLunch,
			[]string{"beef", "lettuce", "tomato", "onion", "pickles", "bun"}, nutrition(650, 35, 45, 28, 3)),
		mk("2", "Avocado Toast", "Sourdough bread topped with mashed avocado, cherry tomatoes, and feta",
			"https://images.unsplash.com/photo-1541519227354-08fa5d50c44d?w=400", domain.CategoryBreakfast,
			[]string{"sourdough", "avocado", "cherry tomatoes", "feta", "lemon"}, nutrition(420, 12, 38, 24, 8)),
		mk("3", "Grilled Salmon", "Fresh Atlantic salmon with roasted vegetables and quinoa",
			"https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=400", domain.CategoryDinner,
			[]string{"salmon", "quinoa", "broccoli", "carrots", "lemon", "herbs"}, nutrition(520, 42, 32, 22, 5)),
		mk("4", "Chocolate Chip Cookies", "Freshly baked cookies with premium chocolate chips",
			"https://images.unsplash.com/photo-1499636136210-6f4ee915583e?w=400", domain.CategoryDessert,
			[]string{"flour", "butter", "sugar", "chocolate chips", "vanilla"}, nutrition(280, 3, 38, 14, 1)),
		mk("5", "Fresh Orange Juice", "Freshly squeezed orange juice, served cold",
			"https://images.unsplash.com/photo-1600271886742-f049cd451bba?w=400", domain.CategoryBeverage,
			[]string{"oranges"}, nil),
		mk("6", "Caesar Salad", "Crisp romaine lettuce with caesar dressing, croutons, and parmesan",
			"https://images.unsplash.com/photo-1546793665-c74683f339c1?w=400", domain.CategoryLunch,
			[]string{"romaine", "caesar dressing", "croutons", "parmesan"}, nutrition(320, 8, 18, 24, 4)),
		mk("7", "Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and fresh basil",
			"https://images.unsplash.com/photo-1574071318508-1cdbab80d002?w=400", domain.CategoryDinner,
			[]string{"pizza dough", "tomato sauce", "mozzarella", "basil"}, nutrition(580, 24, 68, 22, 4)),
		mk("8", "French Toast", "Golden brown toast with maple syrup and butter",
			"https://images.unsplash.com/photo-1484723091739-30a097b8f16b?w=400", domain.CategoryBreakfast,
			[]string{"bread", "eggs", "milk", "maple syrup", "butter"}, nutrition(450, 12, 52, 20, 2)),
		mk("9", "Ice Cream Sundae", "Vanilla ice cream with chocolate sauce and whipped cream",
			"https://images.unsplash.com/photo-1563805042-7684c019e1cb?w=400", domain.CategoryDessert,
			[]string{"vanilla ice cream", "chocolate sauce", "whipped cream", "cherry"}, nutrition(380, 6, 48, 18, 2)),
		mk("10", "Green Smoothie", "Fresh spinach, banana, and mango blended to perfection",
			"https://images.unsplash.com/photo-1553530666-ba11a7da3888?w=400", domain.CategoryBeverage,
			[]string{"spinach", "banana", "mango", "yogurt"}, nutrition(220, 8, 42, 4, 6)),
	}
}
