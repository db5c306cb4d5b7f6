// Package synth synthesizes merged operation descriptors from analyzed
// route units.
//
// For every (path, method) pair it builds up to four descriptor fragments:
// the base defaults, the fragment inferred from the handler's source, the
// registered explicit schema, and the registered override. The merge engine
// collapses them in that precedence order and the result decodes back into
// an immutable descriptor.Operation ready for the HTTP validator.
package synth

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/merge"
	"github.com/routespec/routespec/schema"
	"github.com/routespec/routespec/source"
	"github.com/routespec/routespec/typemap"
)

// PathOperations maps route path templates to their per-method operations.
// The httpvalidator package consumes this shape directly.
type PathOperations map[string]map[string]*descriptor.Operation

// Result is the outcome of one synthesis pass.
type Result struct {
	// Operations holds every synthesized descriptor.
	Operations PathOperations

	// Diagnostics records every best-effort degradation encountered.
	// Synthesis itself only fails on infrastructure errors (package
	// loading, fragment decoding), never on weak type information.
	Diagnostics []diag.Diagnostic
}

// Synthesizer turns analyzed route units into merged operation descriptors.
type Synthesizer struct {
	cfg *config
	src *source.Context
}

// New creates a Synthesizer over an analysis context.
func New(src *source.Context, opts ...Option) (*Synthesizer, error) {
	if src == nil {
		return nil, fmt.Errorf("synth: source context cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Synthesizer{cfg: cfg, src: src}, nil
}

// Synthesize loads the route units and synthesizes every operation. Units
// are processed concurrently, bounded by WithWorkers.
func (s *Synthesizer) Synthesize(ctx context.Context) (*Result, error) {
	units, err := s.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.SynthesizeUnits(ctx, units)
}

// SynthesizeUnits synthesizes operations for an explicit set of units,
// bypassing the loader. Useful when units come from a cache or from tests.
func (s *Synthesizer) SynthesizeUnits(ctx context.Context, units []*source.Unit) (*Result, error) {
	type unitResult struct {
		path  string
		ops   map[string]*descriptor.Operation
		diags []diag.Diagnostic
	}

	results := make([]unitResult, len(units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.workers)
	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ops, diags, err := s.synthesizeUnit(u)
			if err != nil {
				return err
			}
			results[i] = unitResult{path: u.Path, ops: ops, diags: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Operations: make(PathOperations, len(units))}
	for _, r := range results {
		if len(r.ops) > 0 {
			out.Operations[r.path] = r.ops
		}
		out.Diagnostics = append(out.Diagnostics, r.diags...)
	}
	return out, nil
}

func (s *Synthesizer) synthesizeUnit(u *source.Unit) (map[string]*descriptor.Operation, []diag.Diagnostic, error) {
	ops := make(map[string]*descriptor.Operation, len(u.Operations))
	var diags []diag.Diagnostic

	for _, method := range sortedMethods(u.Operations) {
		decl := u.Operations[method]
		location := method + " " + u.Path

		inferred, ds, err := s.inferredFragment(u, decl)
		if err != nil {
			return nil, nil, fmt.Errorf("synth: %s: %w", location, err)
		}
		diags = append(diags, ds...)

		var explicitFrag map[string]any
		if es := s.explicitFor(u.Path, method, decl); es != nil {
			var eds []diag.Diagnostic
			explicitFrag, eds = es.fragment(location)
			diags = append(diags, eds...)
		}

		override := s.overrideFor(u.Path, method, decl)

		merged := merge.Merge(descriptor.Base(u.Path), inferred, explicitFrag, override)
		op, err := descriptor.FromFragment(merged)
		if err != nil {
			return nil, nil, fmt.Errorf("synth: %s: %w", location, err)
		}
		ops[method] = op

		s.cfg.logger.Debug("synthesized operation",
			"method", method, "path", u.Path,
			"parameters", len(op.Parameters), "responses", len(op.Responses))
	}
	return ops, diags, nil
}

// inferredFragment builds the fragment derived from the handler's source:
// doc metadata, path parameters, the decoded input type, and the observed
// responses.
func (s *Synthesizer) inferredFragment(u *source.Unit, decl *source.Declaration) (map[string]any, []diag.Diagnostic, error) {
	var diags []diag.Diagnostic
	b := descriptor.NewBuilder()

	if decl.Summary != "" {
		b.Summary(decl.Summary)
	}
	if decl.Description != "" {
		b.Description(decl.Description)
	}
	if len(decl.Tags) > 0 {
		b.Tags(decl.Tags...)
	}

	for _, name := range u.PathParams {
		b.PathParam(name, schema.String())
	}

	if decl.InputType != nil {
		node, ds := typemap.MapType(decl.InputType)
		diags = append(diags, relocate(ds, decl.Pos)...)
		b.RequestBody(node, true)
	}

	for key, node := range responseNodes(decl, &diags) {
		b.Response(key, node)
	}

	frag, err := b.Fragment()
	if err != nil {
		return nil, nil, err
	}
	return frag, diags, nil
}

// responseNodes collapses the declaration's response hints into one node
// per status key. Distinct payload shapes observed for the same status
// become a union.
func responseNodes(decl *source.Declaration, diags *[]diag.Diagnostic) map[descriptor.StatusKey]*schema.Node {
	grouped := make(map[descriptor.StatusKey][]*schema.Node)
	var order []descriptor.StatusKey

	for _, hint := range decl.Responses {
		key := descriptor.StatusKey(hint.Status)
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		var node *schema.Node
		if hint.Type != nil {
			var ds []diag.Diagnostic
			node, ds = typemap.MapType(hint.Type)
			*diags = append(*diags, relocate(ds, decl.Pos)...)
		}
		grouped[key] = append(grouped[key], node)
	}

	out := make(map[descriptor.StatusKey]*schema.Node, len(grouped))
	for _, key := range order {
		out[key] = collapseNodes(grouped[key])
	}
	return out
}

func collapseNodes(nodes []*schema.Node) *schema.Node {
	var distinct []*schema.Node
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if !containsEquivalent(distinct, n) {
			distinct = append(distinct, n)
		}
	}
	switch len(distinct) {
	case 0:
		return nil
	case 1:
		return distinct[0]
	default:
		return schema.Union(distinct...)
	}
}

// containsEquivalent compares nodes by their wire form, which is cheap at
// synthesis scale and exactly matches what the merge engine will see.
func containsEquivalent(nodes []*schema.Node, candidate *schema.Node) bool {
	cw, err := candidate.MarshalJSON()
	if err != nil {
		return false
	}
	for _, n := range nodes {
		nw, err := n.MarshalJSON()
		if err != nil {
			continue
		}
		if string(nw) == string(cw) {
			return true
		}
	}
	return false
}

func (s *Synthesizer) explicitFor(path, method string, decl *source.Declaration) *ExplicitSchema {
	if es, ok := s.cfg.explicit[operationKey(path, method)]; ok {
		return es
	}
	if es, ok := decl.Explicit.(*ExplicitSchema); ok {
		return es
	}
	if decl.Explicit != nil {
		// A bare schema value stands for the request body.
		return &ExplicitSchema{Body: decl.Explicit, BodyRequired: true}
	}
	return nil
}

func (s *Synthesizer) overrideFor(path, method string, decl *source.Declaration) map[string]any {
	if frag, ok := s.cfg.override[operationKey(path, method)]; ok {
		return frag
	}
	return decl.Override
}

func relocate(diags []diag.Diagnostic, pos string) []diag.Diagnostic {
	if pos == "" {
		return diags
	}
	for i := range diags {
		diags[i].Location = pos + ": " + diags[i].Location
	}
	return diags
}

func sortedMethods(ops map[string]*source.Declaration) []string {
	methods := make([]string, 0, len(ops))
	for m := range ops {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}
