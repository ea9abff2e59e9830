package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/meals"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPage(w io.Writer, page meals.MealPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCALORIES")
	for _, m := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, meals.CategoryDisplayName(m.Category), calories(m))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	more := ""
	if page.HasMore {
		more = fmt.Sprintf(" (more: --page %d)", page.Page+1)
	}
	_, err := fmt.Fprintf(w, "\npage %d, %d of %d meals%s\n", page.Page, len(page.Items), page.Total, more)
	return err
}

func printMeal(w io.Writer, m domain.Meal) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", m.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", meals.CategoryDisplayName(m.Category))
	if m.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", m.Description)
	}
	if m.ImageURL != "" {
		fmt.Fprintf(tw, "Image:\t%s\n", m.ImageURL)
	}
	if len(m.Ingredients) > 0 {
		fmt.Fprintf(tw, "Ingredients:\t%s\n", strings.Join(m.Ingredients, ", "))
	}
	if ni := m.NutritionalInfo; ni != nil {
		line := fmt.Sprintf("%s kcal, protein %sg, carbs %sg, fat %sg",
			num(ni.Calories), num(ni.Protein), num(ni.Carbs), num(ni.Fat))
		if ni.Fiber != nil {
			line += fmt.Sprintf(", fiber %sg", num(*ni.Fiber))
		}
		fmt.Fprintf(tw, "Nutrition:\t%s\n", line)
	}
	if m.CreatedAt != "" {
		fmt.Fprintf(tw, "Created:\t%s\n", m.CreatedAt)
	}
	if m.UpdatedAt != "" {
		fmt.Fprintf(tw, "Updated:\t%s\n", m.UpdatedAt)
	}
	return tw.Flush()
}

func calories(m domain.Meal) string {
	if m.NutritionalInfo == nil {
		return "-"
	}
	return num(m.NutritionalInfo.Calories)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
