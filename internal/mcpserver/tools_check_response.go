package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/routespec/routespec/httpvalidator"
)

type checkResponseInput struct {
	Spec    opsInput          `json:"spec"              jsonschema:"The operation set to check against"`
	Method  string            `json:"method"            jsonschema:"HTTP method of the originating request"`
	Path    string            `json:"path"              jsonschema:"Concrete request path or route template"`
	Status  int               `json:"status"            jsonschema:"HTTP status code of the response"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Response headers"`
	Body    string            `json:"body,omitempty"    jsonschema:"Response body, typically JSON"`
}

type checkResponseOutput struct {
	Valid      bool        `json:"valid"`
	Violations []violation `json:"violations,omitempty"`
}

func handleCheckResponse(ctx context.Context, _ *mcp.CallToolRequest, input checkResponseInput) (*mcp.CallToolResult, checkResponseOutput, error) {
	if input.Method == "" || input.Path == "" {
		return errResult(fmt.Errorf("method and path are required")), checkResponseOutput{}, nil
	}
	if input.Status < 100 || input.Status > 599 {
		return errResult(fmt.Errorf("status must be a valid HTTP status code, got %d", input.Status)), checkResponseOutput{}, nil
	}

	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), checkResponseOutput{}, nil
	}
	v, err := httpvalidator.New(result.Operations, httpvalidator.WithMaxBodySize(cfg.MaxBodySize))
	if err != nil {
		return errResult(err), checkResponseOutput{}, nil
	}

	header := http.Header{}
	for name, value := range input.Headers {
		header.Set(name, value)
	}

	verr := v.ValidateResponse(strings.ToUpper(input.Method), input.Path, input.Status, header, []byte(input.Body))
	if verr == nil {
		return nil, checkResponseOutput{Valid: true}, nil
	}

	var ve *httpvalidator.ValidationError
	if !errors.As(verr, &ve) {
		return errResult(verr), checkResponseOutput{}, nil
	}
	output := checkResponseOutput{Valid: false}
	output.Violations = makeSlice[violation](len(ve.Details()))
	for _, d := range ve.Details() {
		output.Violations = append(output.Violations, violation{Path: d.Path, Keyword: d.Keyword, Message: d.Message})
	}
	return nil, output, nil
}
