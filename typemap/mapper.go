package typemap

import (
	"strings"

	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/schema"
)

// internalMemberPrefix marks members that never appear in synthesized
// schemas.
const internalMemberPrefix = "__"

// MapType converts a semantic type description into a schema node. It is
// pure and total: every description produces some node. Unresolvable or
// dynamic shapes degrade to a generic object, and the degradation is recorded
// in the returned diagnostics rather than being silent.
func MapType(t *TypeDesc) (*schema.Node, []diag.Diagnostic) {
	m := &mapper{}
	node := m.mapType(t, "")
	return node, m.diags
}

type mapper struct {
	diags []diag.Diagnostic
}

func (m *mapper) mapType(t *TypeDesc, path string) *schema.Node {
	if t == nil {
		return schema.Unknown()
	}

	switch t.Kind {
	case KindString:
		n := schema.String()
		n.Format = t.Format
		return n

	case KindBoolean:
		return schema.Boolean()

	case KindInteger:
		return schema.Number(true)

	case KindFloat:
		return schema.Number(false)

	case KindNull:
		return schema.Null()

	case KindLiteral:
		return schema.Enum(t.Literal)

	case KindArray:
		if t.Elem == nil {
			return schema.Array(schema.Unknown())
		}
		return schema.Array(m.mapType(t.Elem, joinPath(path, "[]")))

	case KindStruct:
		return m.mapStruct(t, path)

	case KindUnion:
		return m.mapUnion(t, path)

	case KindRef:
		return schema.Reference(t.Name)

	case KindMap:
		// String-keyed maps have no statically known member set; an open
		// object is the strongest shape available.
		return schema.Object()

	case KindAny:
		m.diags = append(m.diags, diag.Infof(locate(t, path), "dynamic type degraded to open object"))
		return schema.Object()

	case KindInvalid:
		m.diags = append(m.diags, diag.Warnf(locate(t, path), "unresolved type degraded to open object"))
		return schema.Object()

	default:
		m.diags = append(m.diags, diag.Warnf(locate(t, path), "unrecognized type kind %d degraded to unknown", t.Kind))
		return schema.Unknown()
	}
}

func (m *mapper) mapStruct(t *TypeDesc, path string) *schema.Node {
	obj := schema.Object()
	for _, member := range t.Members {
		if strings.HasPrefix(member.Name, internalMemberPrefix) {
			continue
		}
		var prop *schema.Node
		if member.Type == nil {
			prop = schema.Unknown()
		} else {
			prop = m.mapType(member.Type, joinPath(locate(t, path), member.Name))
		}
		obj.AddProperty(member.Name, prop, !member.Optional)
	}
	return obj
}

// mapUnion collapses a union of homogeneously typed literals into an enum;
// anything else maps to a union over the recursively mapped branches.
func (m *mapper) mapUnion(t *TypeDesc, path string) *schema.Node {
	if len(t.Variants) == 0 {
		m.diags = append(m.diags, diag.Warnf(locate(t, path), "empty union degraded to unknown"))
		return schema.Unknown()
	}

	if values, ok := homogeneousLiterals(t.Variants); ok {
		return schema.Enum(values...)
	}

	variants := make([]*schema.Node, len(t.Variants))
	for i, v := range t.Variants {
		variants[i] = m.mapType(v, path)
	}
	return schema.Union(variants...)
}

// homogeneousLiterals reports whether every variant is a literal of the same
// primitive category, returning the literal values when so.
func homogeneousLiterals(variants []*TypeDesc) ([]any, bool) {
	values := make([]any, 0, len(variants))
	category := ""
	for _, v := range variants {
		if v == nil || v.Kind != KindLiteral {
			return nil, false
		}
		c := literalCategory(v.Literal)
		if c == "" {
			return nil, false
		}
		if category == "" {
			category = c
		} else if c != category {
			return nil, false
		}
		values = append(values, v.Literal)
	}
	return values, len(values) > 0
}

func literalCategory(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int, int32, int64, float32, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return ""
	}
}

func locate(t *TypeDesc, path string) string {
	if path != "" {
		return path
	}
	if t != nil && t.Name != "" {
		return "type " + t.Name
	}
	return "type"
}

func joinPath(base, elem string) string {
	if base == "" {
		return elem
	}
	return base + "." + elem
}
