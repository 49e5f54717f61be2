package gemini

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolName identifies the single tool exposed by this server.
const ToolName = "query_gemini"

// QueryTool describes query_gemini and its input schema.
func QueryTool() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Query Google Gemini 3 Pro Preview API with a prompt and get a response"),
		mcp.WithString("prompt",
			mcp.Description("The prompt to send to Gemini"),
			mcp.Required(),
		),
		mcp.WithNumber("max_tokens",
			mcp.Description("Maximum tokens in the response"),
			mcp.DefaultNumber(DefaultMaxTokens),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Temperature for response generation (0.0 to 2.0)"),
			mcp.DefaultNumber(DefaultTemperature),
			mcp.Min(0.0),
			mcp.Max(2.0),
		),
	)
}

func handleQueryGeminiTool(generator Generator) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return Query(ctx, generator, ParseQueryParams(request)).ToolResult(), nil
	}
}

// RegisterGeminiTools adds query_gemini to s, backed by generator.
func RegisterGeminiTools(s *server.MCPServer, generator Generator) {
	s.AddTool(QueryTool(), handleQueryGeminiTool(generator))
}
