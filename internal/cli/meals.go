package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/meals"
)

func newListCmd(rt *runtime) *cobra.Command {
	var params domain.MealListParams
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meals",
		Long: `List meals one page at a time.

Use --category to restrict the listing to one category and --search for a
case-insensitive match on name, description or ingredients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				var (
					page meals.MealPage
					err  error
				)
				if category != "" {
					page, err = svc.ListMealsByCategory(ctx, domain.MealCategory(category), params)
				} else {
					page, err = svc.ListMeals(ctx, params)
				}
				if err != nil {
					return err
				}
				if rt.json {
					return writeJSON(cmd.OutOrStdout(), page)
				}
				return printPage(cmd.OutOrStdout(), page)
			})
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number (1-based)")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Meals per page")
	cmd.Flags().StringVar(&params.SortBy, "sort-by", "", "Sort field: name or createdAt")
	cmd.Flags().StringVar(&params.SortOrder, "sort-order", "", "Sort order: asc or desc")
	cmd.Flags().StringVar(&params.Search, "search", "", "Filter by text")
	cmd.Flags().StringVar(&category, "category", "", "Only list meals in this category")
	return cmd
}

func newGetCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				meal, err := svc.GetMeal(ctx, args[0])
				if err != nil {
					return err
				}
				return rt.printMeal(cmd, meal)
			})
		},
	}
}

// mealFlags binds the editable meal fields shared by create and update.
type mealFlags struct {
	name        string
	description string
	imageURL    string
	category    string
	ingredients []string
	calories    float64
	protein     float64
	carbs       float64
	fat         float64
	fiber       float64
}

func (f *mealFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Meal name")
	cmd.Flags().StringVar(&f.description, "description", "", "Meal description")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "Image URL")
	cmd.Flags().StringVar(&f.category, "category", "", "Category: "+categoryList())
	cmd.Flags().StringArrayVar(&f.ingredients, "ingredient", nil, "Ingredient (repeatable)")
	cmd.Flags().Float64Var(&f.calories, "calories", 0, "Calories per serving")
	cmd.Flags().Float64Var(&f.protein, "protein", 0, "Protein in grams")
	cmd.Flags().Float64Var(&f.carbs, "carbs", 0, "Carbohydrates in grams")
	cmd.Flags().Float64Var(&f.fat, "fat", 0, "Fat in grams")
	cmd.Flags().Float64Var(&f.fiber, "fiber", 0, "Fiber in grams")
}

var nutritionFlags = []string{"calories", "protein", "carbs", "fat", "fiber"}

// nutritionChanged reports whether any nutrition flag was given.
func nutritionChanged(cmd *cobra.Command) bool {
	for _, name := range nutritionFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// nutrition overlays the given nutrition flags on base, which is not modified.
// It returns nil when no nutrition flag was given.
func (f *mealFlags) nutrition(cmd *cobra.Command, base *domain.NutritionalInfo) *domain.NutritionalInfo {
	if !nutritionChanged(cmd) {
		return nil
	}
	var ni domain.NutritionalInfo
	if base != nil {
		ni = *base
		if base.Fiber != nil {
			fiber := *base.Fiber
			ni.Fiber = &fiber
		}
	}
	flags := cmd.Flags()
	if flags.Changed("calories") {
		ni.Calories = f.calories
	}
	if flags.Changed("protein") {
		ni.Protein = f.protein
	}
	if flags.Changed("carbs") {
		ni.Carbs = f.carbs
	}
	if flags.Changed("fat") {
		ni.Fat = f.fat
	}
	if flags.Changed("fiber") {
		fiber := f.fiber
		ni.Fiber = &fiber
	}
	return &ni
}

func newCreateCmd(rt *runtime) *cobra.Command {
	var f mealFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a meal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := domain.CreateMealRequest{
				Name:            f.name,
				Description:     f.description,
				ImageURL:        f.imageURL,
				Category:        domain.MealCategory(f.category),
				Ingredients:     f.ingredients,
				NutritionalInfo: f.nutrition(cmd, nil),
			}
			if req.Ingredients == nil {
				req.Ingredients = []string{}
			}
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				meal, err := svc.CreateMeal(ctx, req)
				if err != nil {
					return err
				}
				return rt.printMeal(cmd, meal)
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newUpdateCmd(rt *runtime) *cobra.Command {
	var f mealFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a meal",
		Long: `Update a meal. Only the flags that are given are sent; other fields
keep their current values. Nutrition flags are merged into the meal's current
nutrition values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req domain.UpdateMealRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &f.name
			}
			if flags.Changed("description") {
				req.Description = &f.description
			}
			if flags.Changed("image-url") {
				req.ImageURL = &f.imageURL
			}
			if flags.Changed("category") {
				c := domain.MealCategory(f.category)
				req.Category = &c
			}
			if flags.Changed("ingredient") {
				req.Ingredients = f.ingredients
			}
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				if nutritionChanged(cmd) {
					// Nutrition is replaced as a whole, so unchanged values come from the current meal.
					current, err := svc.GetMeal(ctx, args[0])
					if err != nil {
						return err
					}
					req.NutritionalInfo = f.nutrition(cmd, current.NutritionalInfo)
				}
				meal, err := svc.UpdateMeal(ctx, args[0], req)
				if err != nil {
					return err
				}
				return rt.printMeal(cmd, meal)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				if err := svc.DeleteMeal(ctx, args[0]); err != nil {
					return err
				}
				if rt.json {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "deleted": true})
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted meal %s\n", args[0])
				return err
			})
		},
	}
}

func newImportCmd(rt *runtime) *cobra.Command {
	var category string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Create a meal from a recipe web page",
		Long: `Fetch a recipe page, read its schema.org Recipe or OpenGraph metadata and
create a meal from it. Use --dry-run to print the meal without creating it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := rt.importer().Import(cmd.Context(), args[0], domain.MealCategory(category))
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if dryRun {
				return writeJSON(cmd.OutOrStdout(), req)
			}
			return rt.withService(cmd, func(ctx context.Context, svc *meals.Service) error {
				meal, err := svc.CreateMeal(ctx, req)
				if err != nil {
					return err
				}
				return rt.printMeal(cmd, meal)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category of the imported meal: "+categoryList())
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the meal instead of creating it")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newCategoriesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List meal categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cats := domain.Categories()
			if rt.json {
				items := make([]map[string]string, 0, len(cats))
				for _, c := range cats {
					items = append(items, map[string]string{"value": string(c), "label": meals.CategoryDisplayName(c)})
				}
				return writeJSON(out, items)
			}
			for _, c := range cats {
				if _, err := fmt.Fprintf(out, "%-10s %s\n", c, meals.CategoryDisplayName(c)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (rt *runtime) printMeal(cmd *cobra.Command, meal domain.Meal) error {
	if rt.json {
		return writeJSON(cmd.OutOrStdout(), meal)
	}
	return printMeal(cmd.OutOrStdout(), meal)
}

func categoryList() string {
	cats := domain.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
