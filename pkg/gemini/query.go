package gemini

import (
	"context"
	"fmt"

	"github.com/kagent-dev/gemini-mcp-server/pkg/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

// Defaults documented in the query_gemini input schema.
const (
	DefaultMaxTokens   = 8192
	DefaultTemperature = 1.0
)

// NoResponseText replaces an empty model response.
const NoResponseText = "No response received"

// QueryParams are the arguments of a query_gemini call after defaults are applied.
//
// MaxTokens and Temperature are accepted and defaulted but are not sent to
// Gemini; only Prompt reaches the GenerateContent request.
type QueryParams struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ParseQueryParams extracts query_gemini arguments from a tool call request.
func ParseQueryParams(request mcp.CallToolRequest) QueryParams {
	return QueryParams{
		Prompt:      request.GetString("prompt", ""),
		MaxTokens:   request.GetInt("max_tokens", DefaultMaxTokens),
		Temperature: request.GetFloat("temperature", DefaultTemperature),
	}
}

// Outcome is the result of a query: either the generated text or a failure
// message. It is converted to the MCP wire shape only by ToolResult.
type Outcome struct {
	text   string
	failed bool
}

// Succeeded returns an Outcome carrying generated text.
func Succeeded(text string) Outcome {
	return Outcome{text: text}
}

// Failed returns an Outcome carrying a human-readable failure message.
func Failed(message string) Outcome {
	return Outcome{text: message, failed: true}
}

// Text is the generated text, or the failure message for a failed outcome.
func (o Outcome) Text() string { return o.text }

// IsFailed reports whether the query failed.
func (o Outcome) IsFailed() bool { return o.failed }

// ToolResult encodes the outcome as a single text content block, flagging
// failures with isError.
func (o Outcome) ToolResult() *mcp.CallToolResult {
	if o.failed {
		return mcp.NewToolResultError(o.text)
	}
	return mcp.NewToolResultText(o.text)
}

// Query issues exactly one generation call for params.Prompt. Remote failures
// are reported as a Failed outcome and never as a Go error.
func Query(ctx context.Context, generator Generator, params QueryParams) Outcome {
	if params.Prompt == "" {
		return Failed("prompt parameter is required")
	}

	// TODO: forward MaxTokens and Temperature through genai.GenerateContentConfig
	// once the query_gemini contract is revised to honour them.
	logger.Get().V(1).Info("Querying Gemini",
		"model", Model,
		"promptLength", len(params.Prompt),
		"maxTokens", params.MaxTokens,
		"temperature", params.Temperature,
	)

	text, err := generator.Generate(ctx, params.Prompt)
	if err != nil {
		return Failed(fmt.Sprintf("Error querying Gemini: %s", err.Error()))
	}
	if text == "" {
		text = NoResponseText
	}
	return Succeeded(text)
}
