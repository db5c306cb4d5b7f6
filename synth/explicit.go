package synth

import (
	"sort"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/extschema"
	"github.com/routespec/routespec/schema"
)

// ExplicitSchema is a hand-written validation schema for one operation.
// Every value field accepts what extschema.Adapt accepts: an
// *extschema.Builder or any value implementing extschema.JSONSchemer.
// Wrapping a parameter value in extschema.Optional marks the parameter as
// not required.
type ExplicitSchema struct {
	Summary     string
	Description string
	Tags        []string

	// Body is the request body schema; BodyRequired marks the body itself
	// as mandatory.
	Body         any
	BodyRequired bool

	// Parameter schemas by location, keyed by parameter name.
	Query      map[string]any
	Headers    map[string]any
	Cookies    map[string]any
	PathParams map[string]any

	// Responses maps status keys to response body schemas.
	Responses map[descriptor.StatusKey]any

	// Flags are operation-level validation flags.
	Flags *descriptor.Flags
}

// fragment adapts the explicit schema into a descriptor fragment.
func (es *ExplicitSchema) fragment(location string) (map[string]any, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	adapt := func(v any, where string) *schema.Node {
		node, ds := extschema.Adapt(v)
		for _, d := range ds {
			d.Location = location + ": " + where
			diags = append(diags, d)
		}
		return node
	}

	b := descriptor.NewBuilder()
	if es.Summary != "" {
		b.Summary(es.Summary)
	}
	if es.Description != "" {
		b.Description(es.Description)
	}
	if len(es.Tags) > 0 {
		b.Tags(es.Tags...)
	}
	if es.Flags != nil {
		b.Flags(es.Flags)
	}

	if es.Body != nil {
		b.RequestBody(adapt(es.Body, "body"), es.BodyRequired)
	}

	addParams := func(in descriptor.Location, values map[string]any) {
		for _, name := range sortedNames(values) {
			v := values[name]
			required := in == descriptor.LocationPath || !isOptionalValue(v)
			b.Param(in, name, adapt(v, string(in)+" "+name), required)
		}
	}
	addParams(descriptor.LocationQuery, es.Query)
	addParams(descriptor.LocationHeader, es.Headers)
	addParams(descriptor.LocationCookie, es.Cookies)
	addParams(descriptor.LocationPath, es.PathParams)

	for key, v := range es.Responses {
		b.Response(key, adapt(v, "response "+string(key)))
	}

	frag, err := b.Fragment()
	if err != nil {
		diags = append(diags, diag.Errorf(location, "explicit schema fragment: %v", err))
		return map[string]any{}, diags
	}
	return frag, diags
}

// isOptionalValue reports whether v is an optional-wrapped builder.
func isOptionalValue(v any) bool {
	b, ok := v.(*extschema.Builder)
	return ok && b.Kind() == extschema.KindOptional
}

func sortedNames(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	// Parameter maps are unordered; synthesis imposes a stable order.
	sort.Strings(names)
	return names
}
