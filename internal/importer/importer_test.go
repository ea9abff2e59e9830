package importer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/httpclient"
)

// stubHTTPResponse implements httpclient.Response.
type stubHTTPResponse struct {
	body       []byte
	statusCode int
}

func (s stubHTTPResponse) Body() []byte    { return s.body }
func (s stubHTTPResponse) StatusCode() int { return s.statusCode }

// stubHTTPClient returns a single response and records the request.
type stubHTTPClient struct {
	resp    httpclient.Response
	err     error
	url     string
	headers map[string]string
}

func (s *stubHTTPClient) Get(_ context.Context, u string, h map[string]string) (httpclient.Response, error) {
	s.url = u
	s.headers = h
	return s.resp, s.err
}

const ogPage = `
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta property="og:description" content="OG Desc">
    <meta property="og:image" content="/img/og.png">
  </head>
  <body>
    <ul>
      <li itemprop="recipeIngredient">2 cups   flour</li>
      <li itemprop="recipeIngredient">1 egg</li>
    </ul>
  </body>
</html>`

const ldPage = `
<html>
  <head>
    <title>Site | Pancakes</title>
    <meta property="og:title" content="OG Pancakes">
    <script type="application/ld+json">{"@context":"https://schema.org","@type":"WebSite","name":"Site"}</script>
    <script type="application/ld+json">
    {"@context":"https://schema.org","@graph":[
      {"@type":"WebPage","name":"page"},
      {"@type":["Recipe"],"name":"Fluffy Pancakes","description":"Weekend stack",
       "image":[{"@type":"ImageObject","url":"https://cdn.example.com/p.jpg"}],
       "recipeIngredient":["flour","milk","2 eggs"],
       "nutrition":{"@type":"NutritionInformation","calories":"350 calories"}}
    ]}
    </script>
  </head>
</html>`

func TestParseMetaPrefersOGTags(t *testing.T) {
	meta, err := parseMeta([]byte(ogPage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "OG Title" || meta.Description != "OG Desc" || meta.ImageURL != "/img/og.png" {
		t.Fatalf("unexpected meta %#v", meta)
	}
	if strings.Join(meta.Ingredients, "|") != "2 cups flour|1 egg" {
		t.Fatalf("ingredients = %q", meta.Ingredients)
	}
}

func TestParseMetaPrefersRecipeJSONLD(t *testing.T) {
	meta, err := parseMeta([]byte(ldPage))
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "Fluffy Pancakes" || meta.Description != "Weekend stack" {
		t.Fatalf("unexpected meta %#v", meta)
	}
	if meta.ImageURL != "https://cdn.example.com/p.jpg" || meta.Calories != 350 {
		t.Fatalf("image/calories = %q / %v", meta.ImageURL, meta.Calories)
	}
	if len(meta.Ingredients) != 3 {
		t.Fatalf("ingredients = %q", meta.Ingredients)
	}
}

func TestImportBuildsCreateRequest(t *testing.T) {
	client := &stubHTTPClient{resp: stubHTTPResponse{body: []byte(ogPage), statusCode: 200}}
	imp := New(client)

	req, err := imp.Import(context.Background(), "https://recipes.example.com/cakes/1", domain.CategoryDessert)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if client.url != "https://recipes.example.com/cakes/1" || client.headers["User-Agent"] == "" {
		t.Fatalf("request = %s %v", client.url, client.headers)
	}
	if req.Name != "OG Title" || req.Category != domain.CategoryDessert {
		t.Fatalf("req = %+v", req)
	}
	if req.ImageURL != "https://recipes.example.com/img/og.png" {
		t.Fatalf("image = %q", req.ImageURL)
	}
	if req.NutritionalInfo != nil {
		t.Fatalf("expected no nutrition without calories")
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	imp := New(&stubHTTPClient{resp: stubHTTPResponse{statusCode: 200}})
	if _, err := imp.Import(context.Background(), "https://x.example.com", "brunch"); err == nil {
		t.Fatalf("expected category error")
	}
	if _, err := imp.Import(context.Background(), "ftp://x.example.com", domain.CategoryLunch); err == nil {
		t.Fatalf("expected url error")
	}
}

func TestImportReportsStatusAndFetchErrors(t *testing.T) {
	imp := New(&stubHTTPClient{resp: stubHTTPResponse{body: []byte("gone"), statusCode: 404}})
	_, err := imp.Import(context.Background(), "https://x.example.com", domain.CategoryLunch)
	if err == nil || !strings.Contains(err.Error(), "status 404 body: gone") {
		t.Fatalf("expected status error, got %v", err)
	}

	imp = New(&stubHTTPClient{err: errors.New("dial failed")})
	if _, err := imp.Import(context.Background(), "https://x.example.com", domain.CategoryLunch); err == nil {
		t.Fatalf("expected fetch error")
	}
}

func TestImportRequiresTitleAndLimitsBody(t *testing.T) {
	body := bytes.Repeat([]byte("a"), maxHTMLBodyBytes+10)
	imp := New(&stubHTTPClient{resp: stubHTTPResponse{body: body, statusCode: 200}})
	if _, err := imp.Import(context.Background(), "https://x.example.com", domain.CategoryLunch); err == nil {
		t.Fatalf("expected error for page without title")
	}
}

func TestResolveURLHandlesRelative(t *testing.T) {
	got := resolveURL("/img.png", "https://example.com/articles/1")
	if got != "https://example.com/img.png" {
		t.Fatalf("resolveURL got %q", got)
	}
	if got := resolveURL("", "https://example.com"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", " ", "foo", "bar"); got != "foo" {
		t.Fatalf("firstNonEmpty returned %q", got)
	}
}
