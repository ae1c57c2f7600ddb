// Package clipper imports recipes from arbitrary web pages. The page's text
// is handed to the model for extraction, then normalized and saved like any
// other recipe. Clipping does not spend credits.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"platewise/internal/gen"
	"platewise/internal/recipes"
	"platewise/internal/usage"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Feature identifies clipping in usage records.
const Feature = "recipe_clip"

// maxContentChars bounds how much page text is sent to the model.
const maxContentChars = 24000

const extractionPrompt = `You are a recipe extraction expert. Extract the recipe from the following web page text.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe name",
  "description": "One sentence",
  "ingredients": ["quantity + ingredient", "..."],
  "instructions": ["Step 1", "Step 2"],
  "prep_time": "e.g. 30 mins",
  "difficulty": "easy",
  "calories": 500
}

Rules:
1. "difficulty" must be one of: easy, medium, hard.
2. If the page has no recipe, return {"name": ""}.

Do not include any other text or formatting in your response.

Page text:
%s`

// Clipper fetches a page, extracts its recipe and saves it for the user.
type Clipper struct {
	httpClient *http.Client
	invoker    *gen.Invoker
	repo       *recipes.Repository
	usage      *usage.Store
	logger     *zap.Logger
}

// NewClipper creates a clipper.
func NewClipper(invoker *gen.Invoker, repo *recipes.Repository, usageStore *usage.Store, logger *zap.Logger) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		invoker:    invoker,
		repo:       repo,
		usage:      usageStore,
		logger:     logger.Named("clipper"),
	}
}

// ClipURL fetches the URL, extracts the recipe and saves it. It returns the
// normalized recipe and the saved row's ID.
func (c *Clipper) ClipURL(ctx context.Context, userID, url string) (*recipes.Recipe, string, error) {
	content, err := c.fetchPageText(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch page: %w", err)
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	prompt := fmt.Sprintf(extractionPrompt, content)
	res, err := gen.Run(ctx, c.invoker, Feature, prompt, normalizeClipped)

	entry := usage.Entry{
		UserID:  userID,
		Feature: Feature,
		Request: map[string]string{"url": url},
		Err:     err,
		Usage:   res.Meta.Usage,
		Latency: res.Meta.Latency,
	}
	if err == nil {
		entry.Result = res.Value
	}
	c.usage.RecordAsync(entry)

	if err != nil {
		c.logger.Warn("recipe extraction failed",
			zap.String("user_id", userID),
			zap.String("url", url),
			zap.Error(err))
		return nil, "", err
	}

	id, err := c.repo.Save(ctx, userID, *res.Value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save clipped recipe: %w", err)
	}

	c.logger.Info("recipe clipped",
		zap.String("user_id", userID),
		zap.String("url", url),
		zap.String("recipe_id", id))
	return res.Value, id, nil
}

// normalizeClipped reuses the single-recipe normalizer. An empty name means
// the page had no recipe, which the normalizer reports as a mismatch.
func normalizeClipped(payload json.RawMessage) (*recipes.Recipe, error) {
	return recipes.NormalizeOne(payload)
}

// fetchPageText downloads the page and strips it to readable text. Removing
// script, style and navigation noise keeps the prompt small.
func (c *Clipper) fetchPageText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
