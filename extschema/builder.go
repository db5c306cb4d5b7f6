// Package extschema normalizes third-party validation schemas into the
// shared schema node model, so explicit validation configuration is
// structurally interchangeable with inferred-from-type output.
//
// Two shapes are accepted: values implementing the JSONSchemer protocol
// (they describe themselves as a JSON Schema document), and hand-rolled
// Builder values with a discriminated kind. Adaptation never fails hard; an
// unresolvable shape yields an open object node plus a diagnostic.
package extschema

// Builder is a hand-rolled validation schema with a discriminated kind.
// Builders are declarative: construct one with the kind constructors below,
// chain constraint setters, and attach it to an operation declaration as its
// explicit validation schema.
//
//	user := extschema.ObjectSchema().
//		Field("email", extschema.StringSchema().Format("email")).
//		Field("name", extschema.Optional(extschema.StringSchema().MinLength(1)))
type Builder struct {
	kind        string
	fields      []builderField
	items       *Builder
	inner       *Builder
	minLength   *int
	maxLength   *int
	format      string
	pattern     string
	description string
}

type builderField struct {
	name   string
	schema *Builder
}

// Builder kinds.
const (
	KindString   = "string"
	KindNumber   = "number"
	KindInteger  = "integer"
	KindBoolean  = "boolean"
	KindArray    = "array"
	KindObject   = "object"
	KindOptional = "optional"
)

// StringSchema returns a string builder.
func StringSchema() *Builder { return &Builder{kind: KindString} }

// NumberSchema returns a number builder.
func NumberSchema() *Builder { return &Builder{kind: KindNumber} }

// IntegerSchema returns an integer builder.
func IntegerSchema() *Builder { return &Builder{kind: KindInteger} }

// BooleanSchema returns a boolean builder.
func BooleanSchema() *Builder { return &Builder{kind: KindBoolean} }

// ArraySchema returns an array builder over the given item schema.
func ArraySchema(items *Builder) *Builder { return &Builder{kind: KindArray, items: items} }

// ObjectSchema returns an empty object builder.
func ObjectSchema() *Builder { return &Builder{kind: KindObject} }

// Optional wraps inner so the enclosing object excludes the field from its
// required set. The field's value shape is inner's shape.
func Optional(inner *Builder) *Builder { return &Builder{kind: KindOptional, inner: inner} }

// Kind returns the discriminated kind of the builder.
func (b *Builder) Kind() string { return b.kind }

// Field adds a named field to an object builder, preserving declaration
// order. Calling it on a non-object builder is a no-op.
func (b *Builder) Field(name string, schema *Builder) *Builder {
	if b.kind != KindObject {
		return b
	}
	b.fields = append(b.fields, builderField{name: name, schema: schema})
	return b
}

// MinLength sets the minimum string length constraint.
func (b *Builder) MinLength(n int) *Builder {
	b.minLength = &n
	return b
}

// MaxLength sets the maximum string length constraint.
func (b *Builder) MaxLength(n int) *Builder {
	b.maxLength = &n
	return b
}

// Format sets the string format constraint (e.g. "email", "uuid").
func (b *Builder) Format(format string) *Builder {
	b.format = format
	return b
}

// Pattern sets the string pattern constraint.
func (b *Builder) Pattern(pattern string) *Builder {
	b.pattern = pattern
	return b
}

// Describe attaches a description carried through to the schema node.
func (b *Builder) Describe(description string) *Builder {
	b.description = description
	return b
}
