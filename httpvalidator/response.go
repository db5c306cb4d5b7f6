package httpvalidator

import (
	"net/http"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/routespec/routespec/schema"
)

// ValidateResponse validates an outgoing response against the operation's
// descriptor for the given status code. path may be a concrete request path
// or a route template. The body is checked first, then the documented
// headers; the first failing target stops the walk.
//
// Invalid responses are a server-side defect: the returned error is a
// *ValidationError with a 500 status and the generic server message, and
// the failure is logged with its route, method, and status regardless of
// the detailedError flag. The flag only gates whether the recorded details
// appear in the payload. Responses for undocumented status codes pass.
func (v *Validator) ValidateResponse(method, path string, status int, header http.Header, body []byte) error {
	template := path
	if _, ok := v.ops[template]; !ok {
		matched, _, ok := v.matchers.match(path)
		if !ok {
			return nil
		}
		template = matched
	}

	op := v.operation(template, method)
	if op == nil {
		return nil
	}
	if v.resolve(op, nil).Skip {
		return nil
	}

	resp := op.ResponseFor(status)
	if resp == nil {
		return nil
	}
	resolved := v.resolve(op, resp.Flags)
	if resolved.Skip {
		return nil
	}

	fail := func(details []Detail) error {
		v.cfg.logger.Error("response validation failed",
			"method", method,
			"route", template,
			"status", status,
			"violations", len(details))
		var exposed []Detail
		if resolved.DetailedError {
			exposed = details
		}
		return newInternalError(details, exposed)
	}

	if resp.Body != nil && len(body) > 0 {
		var details []Detail
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			details = []Detail{{
				Path:    "body",
				Keyword: keywordType,
				Message: "response body is not valid JSON",
			}}
		} else {
			details = v.plain.Validate(decoded, resp.Body, "body")
		}
		if len(details) > 0 {
			return fail(details)
		}
	}

	var details []Detail
	for _, name := range sortedHeaderNames(resp.Headers) {
		node := resp.Headers[name]
		value := header.Get(name)
		if value == "" {
			details = append(details, Detail{
				Path:    "header." + name,
				Keyword: keywordRequired,
				Message: "documented response header is missing",
			})
			continue
		}
		details = append(details, v.redacting.Validate(coerceParam(value, node), node, "header."+name)...)
	}
	if len(details) > 0 {
		return fail(details)
	}
	return nil
}

func sortedHeaderNames(headers map[string]*schema.Node) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
