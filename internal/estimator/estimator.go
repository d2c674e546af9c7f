// Package estimator turns meal photos, meal descriptions and product names
// into nutrition estimates using a generative model backend.
package estimator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// DefaultLanguage is the language estimates and recipes are written in.
const DefaultLanguage = "Polish"

// Kind identifies the shape of answer a request expects.
type Kind string

const (
	KindMeal    Kind = "meal"
	KindProduct Kind = "product"
	KindRecipe  Kind = "recipe"
)

// Request is one prompt sent to a model. Image is empty for text-only requests.
type Request struct {
	Kind     Kind
	Prompt   string
	Image    []byte
	MimeType string
}

// Model is a generative backend. Generate returns the model's raw text answer,
// which is expected to hold a JSON document.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Estimator interface {
	EstimateFromImage(ctx context.Context, r io.Reader, mimeType string) (*domain.AnalysisResult, error)
	EstimateFromText(ctx context.Context, description string) (*domain.AnalysisResult, error)
	EstimateForProductName(ctx context.Context, name string) (*domain.ProductEstimate, error)
	SuggestRecipe(ctx context.Context, ingredients []string) (*domain.Recipe, error)
}

// Client implements Estimator on top of any Model. Every failure, whether in
// transport or in the answer, is reported as domain.ErrAnalysisFailed.
type Client struct {
	model    Model
	language string
	logger   *slog.Logger
}

func New(model Model, language string, logger *slog.Logger) *Client {
	if language == "" {
		language = DefaultLanguage
	}
	return &Client{model: model, language: language, logger: logger}
}

func (c *Client) EstimateFromImage(ctx context.Context, r io.Reader, mimeType string) (*domain.AnalysisResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image: %v", domain.ErrAnalysisFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image: %w", domain.ErrAnalysisFailed)
	}

	raw, err := c.generate(ctx, Request{
		Kind:     KindMeal,
		Prompt:   imagePrompt(c.language),
		Image:    data,
		MimeType: mimeType,
	})
	if err != nil {
		return nil, err
	}
	return c.meal(raw)
}

func (c *Client) EstimateFromText(ctx context.Context, description string) (*domain.AnalysisResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("empty description: %w", domain.ErrAnalysisFailed)
	}

	raw, err := c.generate(ctx, Request{Kind: KindMeal, Prompt: textPrompt(c.language, description)})
	if err != nil {
		return nil, err
	}
	return c.meal(raw)
}

func (c *Client) EstimateForProductName(ctx context.Context, name string) (*domain.ProductEstimate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty product name: %w", domain.ErrAnalysisFailed)
	}

	raw, err := c.generate(ctx, Request{Kind: KindProduct, Prompt: productPrompt(c.language, name)})
	if err != nil {
		return nil, err
	}
	est, err := parseProduct(raw)
	if err != nil {
		c.logger.Warn("unusable product estimate", "product", name, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return est, nil
}

func (c *Client) SuggestRecipe(ctx context.Context, ingredients []string) (*domain.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients: %w", domain.ErrAnalysisFailed)
	}

	raw, err := c.generate(ctx, Request{Kind: KindRecipe, Prompt: recipePrompt(c.language, ingredients)})
	if err != nil {
		return nil, err
	}
	recipe, err := parseRecipe(raw)
	if err != nil {
		c.logger.Warn("unusable recipe", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return recipe, nil
}

func (c *Client) generate(ctx context.Context, req Request) (string, error) {
	raw, err := c.model.Generate(ctx, req)
	if err != nil {
		c.logger.Error("estimator request failed", "kind", req.Kind, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	return raw, nil
}

func (c *Client) meal(raw string) (*domain.AnalysisResult, error) {
	res, err := parseMeal(raw)
	if err != nil {
		c.logger.Warn("unusable meal estimate", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	c.logger.Info("meal estimated", "items", len(res.Items), "total_calories", res.TotalCalories)
	return res, nil
}
