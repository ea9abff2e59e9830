package importer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// recipeLD is the subset of a schema.org Recipe the importer reads.
type recipeLD struct {
	Name        string
	Description string
	Image       string
	Ingredients []string
	Calories    float64
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// findRecipe returns the first schema.org Recipe found in the page's JSON-LD blocks.
func findRecipe(doc *goquery.Document) recipeLD {
	var found recipeLD
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		if node := recipeNode(raw); node != nil {
			found = decodeRecipe(node)
			return false
		}
		return true
	})
	return found
}

// recipeNode walks arrays and @graph containers looking for an object typed Recipe.
func recipeNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if node := recipeNode(item); node != nil {
				return node
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return recipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func decodeRecipe(node map[string]any) recipeLD {
	r := recipeLD{
		Name:        stringField(node["name"]),
		Description: stringField(node["description"]),
		Image:       imageField(node["image"]),
	}
	if list, ok := node["recipeIngredient"].([]any); ok {
		for _, item := range list {
			if s := strings.Join(strings.Fields(stringField(item)), " "); s != "" {
				r.Ingredients = append(r.Ingredients, s)
			}
		}
	}
	if nutrition, ok := node["nutrition"].(map[string]any); ok {
		r.Calories = leadingNumber(stringField(nutrition["calories"]))
	}
	return r
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// imageField accepts a URL string, a list of URLs or an ImageObject.
func imageField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageField(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return stringField(t["url"])
	}
	return ""
}

func leadingNumber(s string) float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
