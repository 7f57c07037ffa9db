package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dukerupert/plateful/internal/model"
)

var ErrNoRecipeFound = errors.New("no recipe found on page")

const maxPageBytes = 5 << 20

// Importer fetches recipe pages and reads their schema.org Recipe markup.
type Importer struct {
	client *http.Client
}

func NewImporter(client *http.Client) *Importer {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Importer{client: client}
}

// Import fetches url and extracts a recipe from it. The result has no id.
func (i *Importer) Import(ctx context.Context, url string) (*model.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Plateful/1.0 (+recipe import)")
	req.Header.Set("Accept", "text/html")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recipe page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recipe page: status %d", resp.StatusCode)
	}

	return ParsePage(io.LimitReader(resp.Body, maxPageBytes), url)
}

// ParsePage extracts the first schema.org Recipe found in the page's
// JSON-LD blocks, falling back to Open Graph tags for the name and image.
func ParsePage(r io.Reader, sourceURL string) (*model.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var found map[string]any
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		found = findRecipeNode(v)
		return found == nil
	})

	rec := &model.Recipe{
		Difficulty:   model.DifficultyMedium,
		Ingredients:  []model.Ingredient{},
		Instructions: []string{},
		Tags:         []string{},
		SourceURL:    sourceURL,
	}
	if found != nil {
		fillFromLD(rec, found)
	}

	if rec.Name == "" {
		rec.Name = strings.TrimSpace(metaContent(doc, "og:title"))
	}
	if rec.ImageURL == "" {
		rec.ImageURL = strings.TrimSpace(metaContent(doc, "og:image"))
	}
	if rec.Description == "" {
		rec.Description = strings.TrimSpace(metaContent(doc, "og:description"))
	}
	if rec.Name == "" {
		return nil, ErrNoRecipeFound
	}
	return rec, nil
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return content
}

// findRecipeNode walks arrays and @graph containers for a node typed Recipe.
func findRecipeNode(v any) map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	case map[string]any:
		if isRecipeType(node["@type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func fillFromLD(rec *model.Recipe, node map[string]any) {
	rec.Name = strings.TrimSpace(str(node["name"]))
	rec.Description = strings.TrimSpace(str(node["description"]))
	rec.ImageURL = imageURL(node["image"])
	rec.PrepTime = isoMinutes(str(node["prepTime"]))
	rec.CookTime = isoMinutes(str(node["cookTime"]))
	if rec.PrepTime == 0 && rec.CookTime == 0 {
		rec.CookTime = isoMinutes(str(node["totalTime"]))
	}
	rec.Servings = servings(node["recipeYield"])

	for _, line := range stringList(node["recipeIngredient"]) {
		if line = strings.TrimSpace(line); line != "" {
			rec.Ingredients = append(rec.Ingredients, model.Ingredient{Raw: line})
		}
	}
	rec.Instructions = append(rec.Instructions, instructions(node["recipeInstructions"])...)

	seen := map[string]bool{}
	for _, key := range []string{"recipeCategory", "recipeCuisine", "keywords"} {
		for _, tag := range splitTags(node[key]) {
			if !seen[tag] {
				seen[tag] = true
				rec.Tags = append(rec.Tags, tag)
			}
		}
	}
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

// stringList flattens a string or array of strings.
func stringList(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if text := str(item); text != "" {
				out = append(out, text)
			}
		}
		return out
	}
	return nil
}

func imageURL(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			return imageURL(img[0])
		}
	case map[string]any:
		return str(img["url"])
	}
	return ""
}

func instructions(v any) []string {
	var out []string
	switch node := v.(type) {
	case string:
		for _, line := range strings.Split(node, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	case []any:
		for _, item := range node {
			out = append(out, instructions(item)...)
		}
	case map[string]any:
		// HowToSection nests its steps.
		if items, ok := node["itemListElement"]; ok {
			return instructions(items)
		}
		if text := strings.TrimSpace(str(node["text"])); text != "" {
			out = append(out, text)
		}
	}
	return out
}

var leadingInt = regexp.MustCompile(`\d+`)

func servings(v any) int {
	switch y := v.(type) {
	case float64:
		return int(y)
	case string:
		if m := leadingInt.FindString(y); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []any:
		for _, item := range y {
			if n := servings(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

func splitTags(v any) []string {
	var out []string
	for _, raw := range stringList(v) {
		for _, part := range strings.Split(raw, ",") {
			if tag := strings.ToLower(strings.TrimSpace(part)); tag != "" {
				out = append(out, strings.ReplaceAll(tag, " ", "-"))
			}
		}
	}
	return out
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// isoMinutes converts an ISO-8601 duration such as "PT1H30M" to minutes.
func isoMinutes(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return atoi(m[1])*24*60 + atoi(m[2])*60 + atoi(m[3])
}
