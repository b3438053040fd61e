package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"recipe-planner/internal/llm"
	"recipe-planner/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

// maxContentChars caps the page text sent to the model.
const maxContentChars = 20000

//go:embed clipper_prompt.md
var clipperPrompt string

var clipperTmpl = template.Must(template.New("Clipper").Parse(clipperPrompt))

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// Page is the cleaned content of a fetched recipe page.
type Page struct {
	Text     string
	ImageURL string
}

// Result is a recipe extracted from a page.
type Result struct {
	Recipe    *recipe.GeneratedRecipe
	ImageURL  string
	SourceURL string
	Meta      llm.AgentMeta
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
	}
}

// ClipURL fetches the URL and asks the model to structure the recipe it contains.
func (c *Clipper) ClipURL(ctx context.Context, url string) (Result, error) {
	page, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch content: %w", err)
	}
	if strings.TrimSpace(page.Text) == "" {
		return Result{}, fmt.Errorf("page at %s has no readable content", url)
	}

	start := time.Now()
	prompt, err := buildClipperPrompt(page.Text)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	meta := llm.AgentMeta{
		AgentName: "RecipeClipper",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return Result{Meta: meta}, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return Result{Meta: meta}, llm.ErrEmptyResponse
	}

	extracted, err := recipe.ParseGeneratedRecipe(resp.Content)
	if err != nil {
		return Result{Meta: meta}, err
	}

	return Result{
		Recipe:    extracted,
		ImageURL:  page.ImageURL,
		SourceURL: url,
		Meta:      meta,
	}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, err
	}

	image, _ := doc.Find(`meta[property="og:image"]`).Attr("content")

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentChars {
		text = strings.ToValidUTF8(text[:maxContentChars], "")
	}

	return Page{Text: text, ImageURL: strings.TrimSpace(image)}, nil
}

func buildClipperPrompt(content string) (string, error) {
	var buf bytes.Buffer
	err := clipperTmpl.Execute(&buf, struct {
		Schema  string
		Content string
	}{recipe.Schema(), content})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
