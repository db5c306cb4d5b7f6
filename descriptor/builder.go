package descriptor

import (
	"strings"

	"github.com/routespec/routespec/schema"
)

// SourceKind identifies where a schema fragment came from. Merge precedence
// between sources is fixed: override beats explicit beats inferred beats
// the base defaults.
type SourceKind int

// Schema sources, in ascending precedence.
const (
	SourceBase SourceKind = iota
	SourceInferred
	SourceExplicit
	SourceOverride
)

// String returns the source name used in diagnostics.
func (k SourceKind) String() string {
	switch k {
	case SourceBase:
		return "base"
	case SourceInferred:
		return "inferred"
	case SourceExplicit:
		return "explicit"
	case SourceOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Builder assembles a complete per-method operation descriptor from a
// single schema source. Methods chain; call Fragment or Operation to
// extract the result. The zero value is not usable, start with NewBuilder.
type Builder struct {
	op Operation
}

// NewBuilder returns an empty operation builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Summary sets the operation summary.
func (b *Builder) Summary(s string) *Builder {
	b.op.Summary = s
	return b
}

// Description sets the operation description.
func (b *Builder) Description(s string) *Builder {
	b.op.Description = s
	return b
}

// Tags appends operation tags.
func (b *Builder) Tags(tags ...string) *Builder {
	b.op.Tags = append(b.op.Tags, tags...)
	return b
}

// Flags sets the operation-level validation flags.
func (b *Builder) Flags(f *Flags) *Builder {
	b.op.Flags = f
	return b
}

// Param adds one parameter. Adding a parameter with the same name and
// location as an existing one replaces it.
func (b *Builder) Param(in Location, name string, node *schema.Node, required bool) *Builder {
	p := &Parameter{Name: name, In: in, Required: required, Schema: node}
	for i, existing := range b.op.Parameters {
		if existing.In == in && existing.Name == name {
			b.op.Parameters[i] = p
			return b
		}
	}
	b.op.Parameters = append(b.op.Parameters, p)
	return b
}

// PathParam adds a required path parameter.
func (b *Builder) PathParam(name string, node *schema.Node) *Builder {
	return b.Param(LocationPath, name, node, true)
}

// QueryParam adds a query parameter.
func (b *Builder) QueryParam(name string, node *schema.Node, required bool) *Builder {
	return b.Param(LocationQuery, name, node, required)
}

// HeaderParam adds a header parameter.
func (b *Builder) HeaderParam(name string, node *schema.Node, required bool) *Builder {
	return b.Param(LocationHeader, name, node, required)
}

// CookieParam adds a cookie parameter.
func (b *Builder) CookieParam(name string, node *schema.Node, required bool) *Builder {
	return b.Param(LocationCookie, name, node, required)
}

// RequestBody sets the request body schema.
func (b *Builder) RequestBody(node *schema.Node, required bool) *Builder {
	b.op.RequestBody = &RequestBody{Required: required, Schema: node}
	return b
}

// Response sets the body schema for one status key.
func (b *Builder) Response(key StatusKey, body *schema.Node) *Builder {
	r := b.response(key)
	r.Body = body
	return b
}

// ResponseHeader sets one documented response header for a status key.
func (b *Builder) ResponseHeader(key StatusKey, name string, node *schema.Node) *Builder {
	r := b.response(key)
	if r.Headers == nil {
		r.Headers = make(map[string]*schema.Node)
	}
	r.Headers[name] = node
	return b
}

func (b *Builder) response(key StatusKey) *Response {
	if b.op.Responses == nil {
		b.op.Responses = make(map[StatusKey]*Response)
	}
	r, ok := b.op.Responses[key]
	if !ok {
		r = &Response{}
		b.op.Responses[key] = r
	}
	return r
}

// Operation returns the assembled descriptor.
func (b *Builder) Operation() *Operation {
	return &b.op
}

// Fragment returns the assembled descriptor in merge-engine map form.
func (b *Builder) Fragment() (map[string]any, error) {
	return ToFragment(&b.op)
}

// Base returns the lowest-precedence fragment every operation starts from:
// a tag derived from the first path segment and an undocumented success
// response, so a route with no schema information at all still merges into
// a well-formed descriptor.
func Base(path string) map[string]any {
	frag := map[string]any{
		"responses": map[string]any{
			"200": map[string]any{},
		},
	}
	if tag := firstSegment(path); tag != "" {
		frag["tags"] = []any{tag}
	}
	return frag
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			return ""
		}
		return seg
	}
	return ""
}
