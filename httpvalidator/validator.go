// Package httpvalidator validates live HTTP traffic against synthesized
// operation descriptors.
//
// A Validator is built once from the synthesizer's PathOperations and is
// safe for concurrent use. Request validation walks headers, query
// parameters, path parameters, cookies, and finally the body, stopping at
// the first target with violations; the returned ValidationError carries
// the status code and client-facing payload. Response validation never
// blocks traffic by itself: callers decide whether to log or replace an
// invalid response, and the bundled Middleware replaces it with a 500
// whose payload is shaped by the resolved detailedError flag.
package httpvalidator

import (
	"fmt"
	"sort"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/synth"
)

// Validator validates requests and responses against operation descriptors.
type Validator struct {
	cfg      *config
	ops      synth.PathOperations
	matchers *matcherSet

	// plain validates bodies, query, and path parameters; redacting
	// validates headers and cookies without echoing their values.
	plain     *SchemaValidator
	redacting *SchemaValidator
}

// New creates a Validator over synthesized operations.
func New(ops synth.PathOperations, opts ...Option) (*Validator, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("httpvalidator: no operations to validate against")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	templates := make([]string, 0, len(ops))
	for tmpl := range ops {
		templates = append(templates, tmpl)
	}
	sort.Strings(templates)

	matchers, err := newMatcherSet(templates)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:       cfg,
		ops:       ops,
		matchers:  matchers,
		plain:     NewSchemaValidator(),
		redacting: NewRedactingSchemaValidator(),
	}, nil
}

// Match resolves a concrete request path to its route template and path
// parameter values.
func (v *Validator) Match(path string) (string, map[string]string, bool) {
	return v.matchers.match(path)
}

// operation looks up the descriptor for a matched template and method.
func (v *Validator) operation(template, method string) *descriptor.Operation {
	methods, ok := v.ops[template]
	if !ok {
		return nil
	}
	return methods[method]
}

// resolve collapses the flag chain for one element of an operation.
func (v *Validator) resolve(op *descriptor.Operation, field *descriptor.Flags) descriptor.Resolved {
	var opFlags *descriptor.Flags
	if op != nil {
		opFlags = op.Flags
	}
	return v.cfg.defaults.Resolve(opFlags, field)
}
