// Package source analyzes route handler packages and produces the semantic
// declarations consumed by schema synthesis.
//
// A route unit is one Go package under the routes root. Its directory path
// is the route path template (bracketed segments become path parameters)
// and its exported functions named after HTTP methods are the operation
// handlers. The analyzer type-checks the unit with go/packages and extracts,
// per handler, the decoded input type, the response payload types and status
// codes, and doc-comment metadata. Everything it extracts is best effort:
// shapes it cannot resolve degrade to weaker type descriptions rather than
// failing the unit.
package source

import "github.com/routespec/routespec/typemap"

// Unit is one analyzed route package.
type Unit struct {
	// ID is the unit's directory path relative to the routes root, e.g.
	// "users/[id]". It is the cache and invalidation key.
	ID string

	// Path is the derived route path template, e.g. "/users/{id}".
	Path string

	// PathParams lists the parameter names in Path, in order.
	PathParams []string

	// Operations maps upper-case HTTP methods to their declarations.
	Operations map[string]*Declaration
}

// Declaration is the analyzed view of one handler function.
type Declaration struct {
	// Method is the upper-case HTTP method the handler serves.
	Method string

	// HandlerName is the declared function name.
	HandlerName string

	// Pos is the handler's source position, for diagnostics.
	Pos string

	// Summary and Description come from the handler's doc comment: first
	// line and remainder respectively. Empty when there is no comment.
	Summary     string
	Description string

	// Tags holds extra tags beyond the path-derived default.
	Tags []string

	// InputType is the decoded request body type, nil when the handler
	// decodes nothing.
	InputType *typemap.TypeDesc

	// Responses lists the observed response payloads. Empty when the
	// handler produced no recognizable response call.
	Responses []ResponseHint

	// Explicit is an optional hand-written validation schema for the
	// operation: an extschema.Builder, a JSONSchemer value, or nil. The
	// analyzer never fills it; it is attached by the registry.
	Explicit any

	// Override is an optional destructive descriptor fragment, likewise
	// attached by the registry rather than extracted from source.
	Override map[string]any
}

// ResponseHint records one observed response: a status key and the payload
// type written for it.
type ResponseHint struct {
	// Status is a concrete status code string, e.g. "200" or "201".
	Status string

	// Type describes the payload; nil when the payload expression could
	// not be resolved.
	Type *typemap.TypeDesc
}
