package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxErrorSnippet  = 1024

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "mealbook-importer/1.0"
)

// Importer turns a recipe web page into a CreateMealRequest.
type Importer struct {
	client  httpclient.Client
	headers map[string]string
}

// New constructs an importer with the provided HTTP client (or a default resty client).
func New(client httpclient.Client) *Importer {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout).WithMaxBodyBytes(maxHTMLBodyBytes)
	}
	return &Importer{
		client: client,
		headers: map[string]string{
			"User-Agent": defaultUserAgent,
			"Accept":     "text/html,application/xhtml+xml",
		},
	}
}

// Import fetches pageURL and builds a meal from its recipe metadata. The page
// title is required; everything else is best effort.
func (i *Importer) Import(ctx context.Context, pageURL string, category domain.MealCategory) (domain.CreateMealRequest, error) {
	if !category.Valid() {
		return domain.CreateMealRequest{}, fmt.Errorf("unknown category %q", category)
	}
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.CreateMealRequest{}, fmt.Errorf("invalid page url %q", pageURL)
	}

	resp, err := i.client.Get(ctx, u.String(), i.headers)
	if err != nil {
		return domain.CreateMealRequest{}, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != 200 {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > maxErrorSnippet {
			snippet = snippet[:maxErrorSnippet]
		}
		return domain.CreateMealRequest{}, fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	// The default client stops reading at the cap; injected clients are trimmed here.
	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return domain.CreateMealRequest{}, err
	}
	if meta.Title == "" {
		return domain.CreateMealRequest{}, errors.New("page has no title")
	}

	req := domain.CreateMealRequest{
		Name:        meta.Title,
		Description: meta.Description,
		ImageURL:    resolveURL(meta.ImageURL, u.String()),
		Category:    category,
		Ingredients: meta.Ingredients,
	}
	if req.Ingredients == nil {
		req.Ingredients = []string{}
	}
	if meta.Calories > 0 {
		req.NutritionalInfo = &domain.NutritionalInfo{Calories: meta.Calories}
	}
	return req, nil
}

type pageMeta struct {
	Title       string
	Description string
	ImageURL    string
	Ingredients []string
	Calories    float64
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	recipe := findRecipe(doc)

	pm := pageMeta{}
	pm.Title = firstNonEmpty(
		recipe.Name,
		extract(`meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	pm.Description = firstNonEmpty(
		recipe.Description,
		extract(`meta[property="og:description"]`),
		extract(`meta[name="description"]`),
	)
	pm.ImageURL = firstNonEmpty(recipe.Image, extract(`meta[property="og:image"]`))
	pm.Calories = recipe.Calories

	pm.Ingredients = recipe.Ingredients
	if len(pm.Ingredients) == 0 {
		doc.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`).Each(func(_ int, s *goquery.Selection) {
			if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
				pm.Ingredients = append(pm.Ingredients, text)
			}
		})
	}

	return pm, nil
}

// resolveURL makes ref absolute against base; unparseable refs are returned unchanged.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
