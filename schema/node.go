// Package schema defines the structural, JSON-Schema-like node model shared
// by every schema source in the synthesis pipeline.
//
// A Node is a tagged union over a closed Kind enum. Nodes carry no behavior
// beyond construction helpers and the JSON wire codec; the typemap, extschema,
// merge, and httpvalidator packages all operate on the same Node shape so the
// three schema sources stay structurally interchangeable.
package schema

import "slices"

// Kind discriminates the Node variants. The enum is closed: every consumer
// switches exhaustively over it and routes unrecognized values to KindUnknown.
type Kind int

const (
	// KindUnknown is the fallback when no structural information could be
	// derived. It validates any value.
	KindUnknown Kind = iota

	// KindString describes a string with optional format and length/pattern
	// constraints.
	KindString

	// KindNumber describes a number; IsInteger restricts it to integers.
	KindNumber

	// KindBoolean describes a boolean.
	KindBoolean

	// KindNull describes the null value.
	KindNull

	// KindArray describes a homogeneous array with an item schema.
	KindArray

	// KindObject describes an object with ordered properties and a
	// required set.
	KindObject

	// KindEnum describes a finite set of literal values.
	KindEnum

	// KindUnion describes a value matching any of several variants.
	KindUnion

	// KindReference describes a reference to a named schema.
	KindReference
)

// String returns the JSON-Schema-flavored name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Node is one structural schema node. Only the fields belonging to the
// variant selected by Kind are meaningful; all others are zero.
//
// Invariant: for KindObject, Required is always a subset of the property
// names. AddProperty and the JSON codec maintain this; code constructing
// object nodes by hand should go through AddProperty.
type Node struct {
	Kind Kind

	// Description is opaque metadata passed through untouched.
	Description string

	// String constraints (KindString).
	Format    string
	Pattern   string
	MinLength *int
	MaxLength *int

	// IsInteger restricts KindNumber to integral values.
	IsInteger bool

	// Items is the element schema for KindArray. A nil Items means the
	// element shape is unknown.
	Items *Node

	// Properties holds the ordered property map for KindObject.
	Properties *Properties

	// Required lists required property names for KindObject.
	Required []string

	// Values holds the literal set for KindEnum. Non-empty, and
	// homogeneously typed when originating from literal-type detection.
	Values []any

	// Variants holds the branches for KindUnion.
	Variants []*Node

	// Target names the referenced schema for KindReference.
	Target string
}

// Unknown returns the fallback node that validates anything.
func Unknown() *Node {
	return &Node{Kind: KindUnknown}
}

// String returns a string node.
func String() *Node {
	return &Node{Kind: KindString}
}

// Number returns a number node; integer selects the integral restriction.
func Number(integer bool) *Node {
	return &Node{Kind: KindNumber, IsInteger: integer}
}

// Boolean returns a boolean node.
func Boolean() *Node {
	return &Node{Kind: KindBoolean}
}

// Null returns a null node.
func Null() *Node {
	return &Node{Kind: KindNull}
}

// Array returns an array node. items may be nil when the element shape is
// unknown.
func Array(items *Node) *Node {
	return &Node{Kind: KindArray, Items: items}
}

// Object returns an empty object node. A generic object with no declared
// properties is the graceful-degradation result for unresolvable shapes.
func Object() *Node {
	return &Node{Kind: KindObject, Properties: NewProperties()}
}

// Enum returns an enum node over the given literal values.
func Enum(values ...any) *Node {
	return &Node{Kind: KindEnum, Values: values}
}

// Union returns a union node over the given variants.
func Union(variants ...*Node) *Node {
	return &Node{Kind: KindUnion, Variants: variants}
}

// Reference returns a reference node targeting a named schema.
func Reference(target string) *Node {
	return &Node{Kind: KindReference, Target: target}
}

// AddProperty adds a named property to an object node, appending the name to
// Required when required is true. It preserves insertion order and the
// required-subset invariant. Calling it on a non-object node is a no-op.
func (n *Node) AddProperty(name string, prop *Node, required bool) *Node {
	if n.Kind != KindObject {
		return n
	}
	if n.Properties == nil {
		n.Properties = NewProperties()
	}
	if prop == nil {
		prop = Unknown()
	}
	n.Properties.Set(name, prop)
	if required && !slices.Contains(n.Required, name) {
		n.Required = append(n.Required, name)
	}
	return n
}

// Property returns the named property schema of an object node, or nil.
func (n *Node) Property(name string) *Node {
	if n.Kind != KindObject || n.Properties == nil {
		return nil
	}
	return n.Properties.Get(name)
}

// IsRequired reports whether name is in the object node's required set.
func (n *Node) IsRequired(name string) bool {
	return slices.Contains(n.Required, name)
}

// normalizeRequired drops required entries that name no declared property,
// restoring the required-subset invariant after external input.
func (n *Node) normalizeRequired() {
	if n.Kind != KindObject || len(n.Required) == 0 {
		return
	}
	kept := n.Required[:0]
	for _, name := range n.Required {
		if n.Properties != nil && n.Properties.Get(name) != nil {
			kept = append(kept, name)
		}
	}
	n.Required = kept
}

// Clone returns a deep copy of the node. Descriptor publication clones every
// node so callers cannot mutate a published tree through retained pointers.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.MinLength != nil {
		v := *n.MinLength
		out.MinLength = &v
	}
	if n.MaxLength != nil {
		v := *n.MaxLength
		out.MaxLength = &v
	}
	out.Items = n.Items.Clone()
	if n.Properties != nil {
		out.Properties = NewProperties()
		n.Properties.Range(func(name string, prop *Node) bool {
			out.Properties.Set(name, prop.Clone())
			return true
		})
	}
	out.Required = slices.Clone(n.Required)
	out.Values = slices.Clone(n.Values)
	if n.Variants != nil {
		out.Variants = make([]*Node, len(n.Variants))
		for i, v := range n.Variants {
			out.Variants[i] = v.Clone()
		}
	}
	return &out
}
