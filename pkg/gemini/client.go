package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kagent-dev/gemini-mcp-server/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// Model is the only generation model this server talks to.
const Model = "gemini-3-pro-preview"

var tracer = otel.Tracer("gemini-mcp-server")

// Generator issues a single text generation call for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientConfig configures the Gemini client.
type ClientConfig struct {
	APIKey string
	// BaseURL overrides the Gemini API endpoint, e.g. for a proxy.
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a Generator backed by the Gemini API. It is built once at startup
// and never mutated afterwards, so it is safe to share between requests.
type Client struct {
	models *genai.Models
	model  string
}

var _ Generator = (*Client)(nil)

// NewClient builds a Gemini client bound to the configured API key.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini client requires an API key")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{models: client.Models, model: Model}, nil
}

// Generate sends prompt as the sole content of one GenerateContent call and
// returns the concatenated text of the first candidate. Errors from the API are
// returned unchanged.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("gemini.prompt_length", len(prompt)),
	)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Get().Error(err, "GenerateContent failed", "model", c.model)
		return "", err
	}

	if reason := finishReason(resp); reason != "" {
		span.SetAttributes(attribute.String("gemini.finish_reason", string(reason)))
		if !IsNormalCompletion(reason) {
			logger.Get().Info("Gemini response ended abnormally",
				"model", c.model,
				"finishReason", reason,
				"explanation", FinishReasonMessage(reason),
			)
		}
	}

	text := resp.Text()
	span.SetAttributes(attribute.Int("gemini.response_length", len(text)))
	span.SetStatus(codes.Ok, "GenerateContent")
	return text, nil
}

func finishReason(resp *genai.GenerateContentResponse) genai.FinishReason {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return resp.Candidates[0].FinishReason
}
