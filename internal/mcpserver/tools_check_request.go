package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/routespec/routespec/httpvalidator"
)

type checkRequestInput struct {
	Spec    opsInput          `json:"spec"              jsonschema:"The operation set to check against"`
	Method  string            `json:"method"            jsonschema:"HTTP method of the request"`
	Path    string            `json:"path"              jsonschema:"Concrete request path, e.g. /users/42"`
	Query   map[string]string `json:"query,omitempty"   jsonschema:"Query parameters"`
	Headers map[string]string `json:"headers,omitempty" jsonschema:"Request headers"`
	Cookies map[string]string `json:"cookies,omitempty" jsonschema:"Request cookies"`
	Body    string            `json:"body,omitempty"    jsonschema:"Request body, typically JSON"`
}

type violation struct {
	Path    string `json:"path"`
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

type checkRequestOutput struct {
	Matched    bool        `json:"matched"`
	Route      string      `json:"route,omitempty"`
	Valid      bool        `json:"valid"`
	Status     int         `json:"status,omitempty"`
	Error      string      `json:"error,omitempty"`
	Violations []violation `json:"violations,omitempty"`
}

func handleCheckRequest(ctx context.Context, _ *mcp.CallToolRequest, input checkRequestInput) (*mcp.CallToolResult, checkRequestOutput, error) {
	if input.Method == "" || input.Path == "" {
		return errResult(fmt.Errorf("method and path are required")), checkRequestOutput{}, nil
	}

	result, err := input.Spec.resolve(ctx)
	if err != nil {
		return errResult(err), checkRequestOutput{}, nil
	}
	v, err := httpvalidator.New(result.Operations, httpvalidator.WithMaxBodySize(cfg.MaxBodySize))
	if err != nil {
		return errResult(err), checkRequestOutput{}, nil
	}

	req, err := buildRequest(input)
	if err != nil {
		return errResult(err), checkRequestOutput{}, nil
	}

	route, _, matched := v.Match(req.URL.Path)
	if matched {
		_, matched = result.Operations[route][strings.ToUpper(input.Method)]
	}
	output := checkRequestOutput{Matched: matched}
	if matched {
		output.Route = route
	}

	in, verr := v.ValidateRequest(req)
	if in != nil {
		in.Release()
	}
	if verr == nil {
		output.Valid = matched
		return nil, output, nil
	}

	var ve *httpvalidator.ValidationError
	if !errors.As(verr, &ve) {
		return errResult(verr), checkRequestOutput{}, nil
	}
	output.Valid = false
	output.Status = ve.HTTPStatus
	output.Error = ve.Payload.Error
	output.Violations = makeSlice[violation](len(ve.Details()))
	for _, d := range ve.Details() {
		output.Violations = append(output.Violations, violation{Path: d.Path, Keyword: d.Keyword, Message: d.Message})
	}
	return nil, output, nil
}

func buildRequest(input checkRequestInput) (*http.Request, error) {
	req, err := http.NewRequest(strings.ToUpper(input.Method), input.Path, strings.NewReader(input.Body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if len(input.Query) > 0 {
		q := url.Values{}
		for name, value := range input.Query {
			q.Set(name, value)
		}
		req.URL.RawQuery = q.Encode()
	}
	for name, value := range input.Headers {
		req.Header.Set(name, value)
	}
	for name, value := range input.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req, nil
}
