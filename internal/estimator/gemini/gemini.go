// Package gemini is the estimator.Model backed by the Gemini API, using
// structured output so answers always follow the expected JSON schema.
package gemini

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/vbonduro/nutriscan/internal/estimator"
)

const DefaultModel = "gemini-3-flash-preview"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint, e.g. for a test server.
	BaseURL    string
	HTTPClient *http.Client
}

type Model struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Model{client: client, model: cfg.Model}, nil
}

func (m *Model) Generate(ctx context.Context, req estimator.Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mimeType))
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schemaFor(req.Kind),
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}

func schemaFor(kind estimator.Kind) *genai.Schema {
	switch kind {
	case estimator.KindProduct:
		return productSchema
	case estimator.KindRecipe:
		return recipeSchema
	default:
		return mealSchema
	}
}

func number() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }
func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

var mealSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     str(),
					"calories": number(),
					"protein":  number(),
					"carbs":    number(),
					"fats":     number(),
					"quantity": str(),
				},
				Required: []string{"name", "calories", "protein", "carbs", "fats"},
			},
		},
		"totalCalories": number(),
		"totalProtein":  number(),
		"totalCarbs":    number(),
		"totalFats":     number(),
		"confidence":    number(),
	},
	Required: []string{"items", "totalCalories", "totalProtein", "totalCarbs", "totalFats", "confidence"},
}

var productSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"calories": number(),
		"protein":  number(),
		"carbs":    number(),
		"fats":     number(),
		"quantity": str(),
	},
	Required: []string{"calories", "protein", "carbs", "fats", "quantity"},
}

var recipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":        str(),
		"ingredients":  {Type: genai.TypeArray, Items: str()},
		"instructions": {Type: genai.TypeArray, Items: str()},
	},
	Required: []string{"title", "ingredients", "instructions"},
}
