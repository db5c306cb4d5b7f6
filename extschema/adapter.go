package extschema

import (
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/schema"
)

// JSONSchemer is the protocol for validation schemas that can describe
// themselves as a JSON Schema document. Values implementing it are adapted
// by delegating to their own converter and wrapping the result.
type JSONSchemer interface {
	JSONSchema() (*jsonschema.Schema, error)
}

// Adapt normalizes a third-party validation schema value into a schema node.
// It accepts JSONSchemer implementations and *Builder values. Adaptation
// never fails hard: any unresolvable shape degrades to an open object node
// and the degradation is recorded in the returned diagnostics.
func Adapt(v any) (*schema.Node, []diag.Diagnostic) {
	a := &adapter{}
	node := a.adapt(v)
	return node, a.diags
}

type adapter struct {
	diags []diag.Diagnostic
}

func (a *adapter) adapt(v any) *schema.Node {
	switch s := v.(type) {
	case nil:
		a.diags = append(a.diags, diag.Warnf("extschema", "nil schema degraded to open object"))
		return schema.Object()
	case *Builder:
		return a.fromBuilder(s, "$")
	case JSONSchemer:
		doc, err := s.JSONSchema()
		if err != nil || doc == nil {
			a.diags = append(a.diags, diag.Warnf("extschema", "JSONSchema() failed, degraded to open object: %v", err))
			return schema.Object()
		}
		return a.fromJSONSchema(doc, "$")
	default:
		a.diags = append(a.diags, diag.Warnf("extschema", "unsupported schema value %T degraded to open object", v))
		return schema.Object()
	}
}

// fromBuilder walks a hand-rolled builder's declared shape directly.
func (a *adapter) fromBuilder(b *Builder, path string) *schema.Node {
	if b == nil {
		a.diags = append(a.diags, diag.Warnf(path, "nil builder degraded to open object"))
		return schema.Object()
	}

	switch b.kind {
	case KindString:
		n := schema.String()
		n.Format = b.format
		n.Pattern = b.pattern
		n.MinLength = b.minLength
		n.MaxLength = b.maxLength
		n.Description = b.description
		return n

	case KindNumber, KindInteger:
		n := schema.Number(b.kind == KindInteger)
		n.Description = b.description
		return n

	case KindBoolean:
		n := schema.Boolean()
		n.Description = b.description
		return n

	case KindArray:
		var items *schema.Node
		if b.items == nil {
			items = schema.Unknown()
		} else {
			items = a.fromBuilder(b.items, path+"[]")
		}
		n := schema.Array(items)
		n.Description = b.description
		return n

	case KindObject:
		obj := schema.Object()
		obj.Description = b.description
		for _, f := range b.fields {
			field := f.schema
			required := true
			// An optional wrapper contributes its inner shape and drops the
			// field from the parent's required set.
			for field != nil && field.kind == KindOptional {
				field = field.inner
				required = false
			}
			obj.AddProperty(f.name, a.fromBuilder(field, path+"."+f.name), required)
		}
		return obj

	case KindOptional:
		// A bare optional outside an object position: adapt the inner shape.
		return a.fromBuilder(b.inner, path)

	default:
		a.diags = append(a.diags, diag.Warnf(path, "unrecognized builder kind %q degraded to open object", b.kind))
		return schema.Object()
	}
}

// fromJSONSchema wraps a protocol-produced JSON Schema document into the
// node model, keeping only the structural subset the model represents.
func (a *adapter) fromJSONSchema(s *jsonschema.Schema, path string) *schema.Node {
	if s == nil {
		return schema.Unknown()
	}

	switch {
	case s.Ref != "":
		return schema.Reference(s.Ref)

	case len(s.Enum) > 0:
		return schema.Enum(s.Enum...)

	case len(s.AnyOf) > 0:
		return a.unionOf(s.AnyOf, path)

	case len(s.OneOf) > 0:
		return a.unionOf(s.OneOf, path)
	}

	switch s.Type {
	case "string":
		n := schema.String()
		n.Format = s.Format
		n.Pattern = s.Pattern
		n.MinLength = intPtr(s.MinLength)
		n.MaxLength = intPtr(s.MaxLength)
		n.Description = s.Description
		return n

	case "number", "integer":
		n := schema.Number(s.Type == "integer")
		n.Description = s.Description
		return n

	case "boolean":
		n := schema.Boolean()
		n.Description = s.Description
		return n

	case "null":
		return schema.Null()

	case "array":
		var items *schema.Node
		if s.Items == nil {
			items = schema.Unknown()
		} else {
			items = a.fromJSONSchema(s.Items, path+"[]")
		}
		n := schema.Array(items)
		n.Description = s.Description
		return n

	case "object":
		obj := schema.Object()
		obj.Description = s.Description
		required := make(map[string]bool, len(s.Required))
		for _, r := range s.Required {
			required[r] = true
		}
		for _, name := range sortedKeys(s.Properties) {
			obj.AddProperty(name, a.fromJSONSchema(s.Properties[name], path+"."+name), required[name])
		}
		return obj

	case "":
		// No type and no recognizable combinator: open schema.
		return schema.Unknown()

	default:
		a.diags = append(a.diags, diag.Warnf(path, "unrecognized JSON Schema type %q degraded to open object", s.Type))
		return schema.Object()
	}
}

func (a *adapter) unionOf(subs []*jsonschema.Schema, path string) *schema.Node {
	variants := make([]*schema.Node, len(subs))
	for i, sub := range subs {
		variants[i] = a.fromJSONSchema(sub, path)
	}
	return schema.Union(variants...)
}

func intPtr(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// sortedKeys returns map keys in lexical order. JSON Schema property maps
// are unordered, so adaptation imposes a stable order for determinism.
func sortedKeys(m map[string]*jsonschema.Schema) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
