package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/routespec/routespec/descriptor"
)

type synthesizeInput struct {
	Root    string `json:"root"              jsonschema:"Path to the Go module root to analyze"`
	Method  string `json:"method,omitempty"  jsonschema:"Only return routes with this HTTP method"`
	Path    string `json:"path,omitempty"    jsonschema:"Only return routes whose template starts with this prefix"`
	Detail  bool   `json:"detail,omitempty"  jsonschema:"Return full operation descriptors instead of summaries"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Bypass the session cache and re-analyze the source"`
}

type routeSummary struct {
	Method     string   `json:"method"`
	Path       string   `json:"path"`
	Summary    string   `json:"summary,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Parameters int      `json:"parameters"`
	HasBody    bool     `json:"has_body"`
	Statuses   []string `json:"statuses"`
}

type routeDetail struct {
	Method    string                `json:"method"`
	Path      string                `json:"path"`
	Operation *descriptor.Operation `json:"operation"`
}

type synthesizeOutput struct {
	RouteCount  int            `json:"route_count"`
	Returned    int            `json:"returned"`
	Routes      []routeSummary `json:"routes,omitempty"`
	Details     []routeDetail  `json:"details,omitempty"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
}

func handleSynthesize(ctx context.Context, _ *mcp.CallToolRequest, input synthesizeInput) (*mcp.CallToolResult, synthesizeOutput, error) {
	if input.Root == "" {
		return errResult(fmt.Errorf("root is required")), synthesizeOutput{}, nil
	}
	if input.Refresh {
		if abs, err := filepath.Abs(input.Root); err == nil {
			opsCache.invalidate(abs)
		}
	}

	result, err := synthesizeRoot(ctx, input.Root)
	if err != nil {
		return errResult(err), synthesizeOutput{}, nil
	}

	method := strings.ToUpper(input.Method)
	type routeOp struct {
		method, path string
		op           *descriptor.Operation
	}
	var matched []routeOp
	total := 0
	for path, byMethod := range result.Operations {
		for m, op := range byMethod {
			total++
			if method != "" && m != method {
				continue
			}
			if input.Path != "" && !strings.HasPrefix(path, input.Path) {
				continue
			}
			matched = append(matched, routeOp{method: m, path: path, op: op})
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].path != matched[j].path {
			return matched[i].path < matched[j].path
		}
		return matched[i].method < matched[j].method
	})

	output := synthesizeOutput{
		RouteCount: total,
		Returned:   len(matched),
	}

	if input.Detail {
		output.Details = makeSlice[routeDetail](len(matched))
		for _, r := range matched {
			output.Details = append(output.Details, routeDetail{Method: r.method, Path: r.path, Operation: r.op})
		}
	} else {
		output.Routes = makeSlice[routeSummary](len(matched))
		for _, r := range matched {
			output.Routes = append(output.Routes, summarize(r.method, r.path, r.op))
		}
	}

	output.Diagnostics = makeSlice[string](len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		output.Diagnostics = append(output.Diagnostics, d.String())
	}
	return nil, output, nil
}

func summarize(method, path string, op *descriptor.Operation) routeSummary {
	statuses := make([]string, 0, len(op.Responses))
	for key := range op.Responses {
		statuses = append(statuses, string(key))
	}
	sort.Strings(statuses)
	return routeSummary{
		Method:     method,
		Path:       path,
		Summary:    op.Summary,
		Tags:       op.Tags,
		Parameters: len(op.Parameters),
		HasBody:    op.RequestBody != nil,
		Statuses:   statuses,
	}
}
