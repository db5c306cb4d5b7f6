// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes routespec capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/routespec/routespec"
)

const serverInstructions = `routespec MCP server — synthesizes API operation descriptors from Go route handler source and checks HTTP requests and responses against them.

Configuration: All defaults are configurable via ROUTESPEC_* environment variables set in your MCP client config. The Go MCP SDK does not support initializationOptions; use env vars instead.

Key settings:
- ROUTESPEC_CACHE_ENABLED (default: true) — cache synthesized operation sets per module root
- ROUTESPEC_CACHE_TTL (default: 5m) — cache TTL for synthesized operation sets
- ROUTESPEC_SYNTH_WORKERS (default: GOMAXPROCS) — concurrent route units during synthesis
- ROUTESPEC_DECODE_FUNCTIONS — comma-separated function names treated as request body decoders
- ROUTESPEC_RESPOND_FUNCTIONS — comma-separated function names treated as response writers
- ROUTESPEC_MAX_BODY_SIZE (default: 10485760) — body byte cap for check_request/check_response

Caching: Operation sets are cached per session, keyed by absolute module root. Pass refresh=true to synthesize to force re-analysis. A background sweeper removes expired entries.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		opsCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "routespec", Version: routespec.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "synthesize",
		Description: "Analyze the Go module at root and synthesize operation descriptors for its route handlers. Returns route summaries (method, path, parameter and response counts) by default or full descriptors with detail=true. Filter by method or path prefix to narrow large route sets. Degradations during source analysis are reported as diagnostics. Use refresh=true to bypass the session cache after editing handler source.",
	}, handleSynthesize)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_request",
		Description: "Check a described HTTP request against an operation set. Provide the operation set via root (synthesized from Go source) or operations (inline JSON from synthesize). Returns whether the request matched a route, whether it is valid, the status a validating gateway would answer with, and per-field violations. Requests matching no route or method are reported as unmatched, not invalid.",
	}, handleCheckRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_response",
		Description: "Check a described HTTP response against an operation set. Provide the operation set via root or operations. Returns whether the response is valid for its route, method, and status code, with per-field violations. Responses for undocumented status codes pass.",
	}, handleCheckResponse)
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
