// Package typemap converts semantic type descriptions into schema nodes.
//
// A TypeDesc is the analysis-side view of a declared type: the source package
// produces them from go/types information, and Map recursively turns them
// into schema.Node trees. Map is pure and total — every description produces
// some node, degrading to Unknown or a generic object instead of failing, so
// one unresolvable type never blocks synthesis for the rest of a source unit.
package typemap

// Kind discriminates TypeDesc variants. The enum is closed: Map switches
// exhaustively over it and routes unrecognized values to the Unknown fallback.
type Kind int

const (
	// KindInvalid marks a type the analyzer could not resolve.
	KindInvalid Kind = iota

	// KindAny marks a truly dynamic type (interface{} / any).
	KindAny

	// KindString is a string type.
	KindString

	// KindBoolean is a boolean type.
	KindBoolean

	// KindInteger is an integral numeric type.
	KindInteger

	// KindFloat is a floating-point numeric type.
	KindFloat

	// KindNull is the null/none type.
	KindNull

	// KindLiteral is a single literal value of string, numeric, or boolean
	// type. Its value is in TypeDesc.Literal.
	KindLiteral

	// KindArray is a homogeneous sequence; the element is TypeDesc.Elem
	// (nil when unknown).
	KindArray

	// KindMap is a string-keyed map with value type TypeDesc.Elem. It has
	// no statically known member set.
	KindMap

	// KindStruct is a structural type with named members, own and
	// inherited members already flattened into TypeDesc.Members.
	KindStruct

	// KindUnion is a union over TypeDesc.Variants. A union of homogeneous
	// literals is the analysis-side form of an enumerated type.
	KindUnion

	// KindRef marks a recursive occurrence of a named type that is already
	// being mapped higher up the tree.
	KindRef
)

// String returns a short name for the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindNull:
		return "null"
	case KindLiteral:
		return "literal"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// TypeDesc is a semantic type description. Only the fields belonging to the
// variant selected by Kind are meaningful.
type TypeDesc struct {
	Kind Kind

	// Name is the named-type origin when there is one (e.g. "CreateUser").
	// Required for KindRef; informational elsewhere.
	Name string

	// Format is an optional string format hint (e.g. "date-time" for
	// time.Time, "uuid" for uuid.UUID).
	Format string

	// Literal is the value for KindLiteral: string, int64, float64, or bool.
	Literal any

	// Elem is the element type for KindArray and the value type for
	// KindMap. nil means unknown.
	Elem *TypeDesc

	// Members holds the flattened member list for KindStruct.
	Members []Member

	// Variants holds the branches for KindUnion.
	Variants []*TypeDesc
}

// Member is one named member of a structural type.
type Member struct {
	// Name is the wire name of the member (after tag renaming).
	Name string

	// Type is the member's declared type; nil means the member exists but
	// its type is unknown (e.g. a destructured name with no annotation).
	Type *TypeDesc

	// Optional excludes the member from the object's required set.
	Optional bool
}

// Convenience constructors used by the analyzer and by tests.

// Invalid returns an unresolved type description.
func Invalid() *TypeDesc { return &TypeDesc{Kind: KindInvalid} }

// Any returns a dynamic type description.
func Any() *TypeDesc { return &TypeDesc{Kind: KindAny} }

// String returns a string type description.
func String() *TypeDesc { return &TypeDesc{Kind: KindString} }

// Boolean returns a boolean type description.
func Boolean() *TypeDesc { return &TypeDesc{Kind: KindBoolean} }

// Integer returns an integral numeric type description.
func Integer() *TypeDesc { return &TypeDesc{Kind: KindInteger} }

// Float returns a floating-point type description.
func Float() *TypeDesc { return &TypeDesc{Kind: KindFloat} }

// Null returns the null type description.
func Null() *TypeDesc { return &TypeDesc{Kind: KindNull} }

// Literal returns a literal type description for v.
func Literal(v any) *TypeDesc { return &TypeDesc{Kind: KindLiteral, Literal: v} }

// Array returns an array type description; elem may be nil when unknown.
func Array(elem *TypeDesc) *TypeDesc { return &TypeDesc{Kind: KindArray, Elem: elem} }

// Map returns a string-keyed map type description.
func Map(elem *TypeDesc) *TypeDesc { return &TypeDesc{Kind: KindMap, Elem: elem} }

// Struct returns a structural type description over members.
func Struct(name string, members ...Member) *TypeDesc {
	return &TypeDesc{Kind: KindStruct, Name: name, Members: members}
}

// Union returns a union type description over variants.
func Union(variants ...*TypeDesc) *TypeDesc {
	return &TypeDesc{Kind: KindUnion, Variants: variants}
}

// Ref returns a recursive reference to the named type.
func Ref(name string) *TypeDesc { return &TypeDesc{Kind: KindRef, Name: name} }
