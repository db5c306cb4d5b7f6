// Package descriptor defines the merged per-operation schema model and the
// builder that assembles one descriptor fragment per schema source.
//
// An Operation is the complete schema and validation configuration for one
// (path, HTTP method) pair. Operations are constructed once per synthesis
// pass and are immutable after publication: no package mutates a published
// Operation in place, which is what makes the PathOperations map safe to
// share across arbitrarily many concurrent validation calls without locking.
package descriptor

import (
	"fmt"
	"strconv"

	"github.com/routespec/routespec/schema"
)

// Location is where a parameter is carried in the request.
type Location string

// Parameter locations.
const (
	LocationQuery  Location = "query"
	LocationPath   Location = "path"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
)

// Operation is the complete, merged schema and validation configuration for
// one (path, HTTP method) pair.
type Operation struct {
	// Summary, Description, and Tags are opaque metadata passed through
	// untouched from whichever source supplied them.
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Parameters describes the non-body request inputs.
	Parameters []*Parameter `json:"parameters,omitempty"`

	// RequestBody describes the request body, when one is expected.
	RequestBody *RequestBody `json:"requestBody,omitempty"`

	// Responses maps status keys (exact code, wildcard class, or
	// "default") to response descriptors.
	Responses map[StatusKey]*Response `json:"responses,omitempty"`

	// Flags holds operation-level validation flags.
	Flags *Flags `json:"flags,omitempty"`
}

// Parameter describes one named request input outside the body.
type Parameter struct {
	Name     string       `json:"name"`
	In       Location     `json:"in"`
	Required bool         `json:"required,omitempty"`
	Schema   *schema.Node `json:"schema,omitempty"`
	Flags    *Flags       `json:"flags,omitempty"`
}

// RequestBody describes the expected request body.
type RequestBody struct {
	Required bool         `json:"required,omitempty"`
	Schema   *schema.Node `json:"schema,omitempty"`
	Flags    *Flags       `json:"flags,omitempty"`
}

// Response describes one documented response.
type Response struct {
	Description string                  `json:"description,omitempty"`
	Body        *schema.Node            `json:"body,omitempty"`
	Headers     map[string]*schema.Node `json:"headers,omitempty"`
	Flags       *Flags                  `json:"flags,omitempty"`
}

// Parameter returns the parameter with the given name and location, or nil.
func (op *Operation) Parameter(in Location, name string) *Parameter {
	for _, p := range op.Parameters {
		if p != nil && p.In == in && p.Name == name {
			return p
		}
	}
	return nil
}

// ParametersIn returns the operation's parameters at the given location.
func (op *Operation) ParametersIn(in Location) []*Parameter {
	var out []*Parameter
	for _, p := range op.Parameters {
		if p != nil && p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// ResponseFor resolves the response descriptor for a concrete status code.
// Resolution order: exact code, wildcard class ("2XX", "4XX", ...), then
// "default". A nil return means the status is undocumented, which is not an
// error by itself.
func (op *Operation) ResponseFor(status int) *Response {
	if len(op.Responses) == 0 {
		return nil
	}
	if r, ok := op.Responses[StatusKey(strconv.Itoa(status))]; ok {
		return r
	}
	if status >= 100 && status <= 599 {
		if r, ok := op.Responses[StatusKey(fmt.Sprintf("%dXX", status/100))]; ok {
			return r
		}
	}
	return op.Responses[StatusDefault]
}
