package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kagent-dev/gemini-mcp-server/internal/metrics"
	"github.com/kagent-dev/gemini-mcp-server/internal/version"
	"github.com/kagent-dev/gemini-mcp-server/pkg/gemini"
	"github.com/kagent-dev/gemini-mcp-server/pkg/logger"
)

// Name is reported to MCP clients during initialize.
const Name = "gemini-mcp-server"

// New assembles the MCP server exposing query_gemini backed by generator.
// recorder may be nil, in which case no metrics are recorded.
func New(generator gemini.Generator, recorder *metrics.Recorder) *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, message *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Get().Info("MCP client initialized",
			"client", message.Params.ClientInfo.Name,
			"clientVersion", message.Params.ClientInfo.Version,
			"protocolVersion", result.ProtocolVersion,
		)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Get().Error(err, "MCP request failed", "method", method, "id", id)
	})

	s := server.NewMCPServer(
		Name,
		version.Get().Short(),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithHooks(hooks),
		server.WithToolHandlerMiddleware(instrumentToolCalls(recorder)),
	)

	gemini.RegisterGeminiTools(s, generator)
	return s
}

// instrumentToolCalls logs every tool call and records its outcome.
func instrumentToolCalls(recorder *metrics.Recorder) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			result, err := next(ctx, request)
			duration := time.Since(start)

			outcome := metrics.OutcomeSuccess
			switch {
			case err != nil:
				outcome = metrics.OutcomeHandlerError
			case result != nil && result.IsError:
				outcome = metrics.OutcomeToolError
			}

			if recorder != nil {
				recorder.ObserveToolCall(request.Params.Name, outcome, duration)
			}
			if err != nil {
				logger.Get().Error(err, "Tool call failed", "tool", request.Params.Name, "duration", duration)
			} else {
				logger.Get().Info("Tool call finished", "tool", request.Params.Name, "outcome", outcome, "duration", duration)
			}
			return result, err
		}
	}
}
