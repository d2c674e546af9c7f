// Package claude is the estimator.Model backed by the Anthropic Messages API.
package claude

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/nutriscan/internal/estimator"
)

const DefaultModel = "claude-sonnet-4-5"

// maxTokens leaves room for a meal of a few dozen items or a full recipe.
const maxTokens = 2048

type Model struct {
	client *anthropic.Client
	model  string
}

type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func New(apiKey, model string, opts ...Option) *Model {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if model == "" {
		model = DefaultModel
	}

	var clientOpts []anthropic.ClientOption
	if o.baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, anthropic.WithHTTPClient(o.httpClient))
	}

	return &Model{
		client: anthropic.NewClient(apiKey, clientOpts...),
		model:  model,
	}
}

func (m *Model) Generate(ctx context.Context, req estimator.Request) (string, error) {
	var content []anthropic.MessageContent
	if len(req.Image) > 0 {
		content = append(content, anthropic.NewImageMessageContent(
			anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64,
				normaliseMIME(req.MimeType),
				base64.StdEncoding.EncodeToString(req.Image),
			),
		))
	}
	content = append(content, anthropic.NewTextMessageContent(req.Prompt))

	resp, err := m.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(m.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", fmt.Errorf("claude returned no text content")
	}
	return text, nil
}

// normaliseMIME maps image types to the ones the Anthropic API accepts:
// jpeg, png, gif and webp. Anything else is sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
