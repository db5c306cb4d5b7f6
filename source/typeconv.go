package source

import (
	"go/constant"
	"go/types"
	"reflect"
	"strings"

	"github.com/routespec/routespec/typemap"
)

// DescribeType converts a checked Go type into a semantic type description.
// It never fails: unreachable or unresolvable types come back as Invalid and
// are degraded downstream by the mapper.
func DescribeType(t types.Type) *typemap.TypeDesc {
	c := &typeConverter{active: make(map[*types.TypeName]bool)}
	return c.describe(t)
}

type typeConverter struct {
	// active tracks named types currently being expanded, so a recursive
	// occurrence becomes a reference instead of an infinite expansion.
	active map[*types.TypeName]bool
}

func (c *typeConverter) describe(t types.Type) *typemap.TypeDesc {
	switch t := t.(type) {
	case *types.Basic:
		return describeBasic(t)

	case *types.Pointer:
		return c.describe(t.Elem())

	case *types.Slice:
		if isByte(t.Elem()) {
			d := typemap.String()
			d.Format = "byte"
			return d
		}
		return typemap.Array(c.describe(t.Elem()))

	case *types.Array:
		return typemap.Array(c.describe(t.Elem()))

	case *types.Map:
		return typemap.Map(c.describe(t.Elem()))

	case *types.Interface:
		return typemap.Any()

	case *types.Alias:
		return c.describe(types.Unalias(t))

	case *types.Named:
		return c.describeNamed(t)

	case *types.Struct:
		return c.describeStruct("", t)

	default:
		return typemap.Invalid()
	}
}

func describeBasic(t *types.Basic) *typemap.TypeDesc {
	info := t.Info()
	switch {
	case info&types.IsBoolean != 0:
		return typemap.Boolean()
	case info&types.IsInteger != 0:
		return typemap.Integer()
	case info&types.IsFloat != 0:
		return typemap.Float()
	case info&types.IsString != 0:
		return typemap.String()
	case t.Kind() == types.UntypedNil:
		return typemap.Null()
	default:
		return typemap.Invalid()
	}
}

func (c *typeConverter) describeNamed(t *types.Named) *typemap.TypeDesc {
	obj := t.Obj()

	if d := wellKnownNamed(obj); d != nil {
		return d
	}

	if c.active[obj] {
		return typemap.Ref(obj.Name())
	}
	c.active[obj] = true
	defer delete(c.active, obj)

	// A named basic type with package-level constants of that type is the
	// Go spelling of an enumerated type.
	if basic, ok := t.Underlying().(*types.Basic); ok {
		if values := enumValues(t, obj); len(values) > 0 {
			variants := make([]*typemap.TypeDesc, len(values))
			for i, v := range values {
				variants[i] = typemap.Literal(v)
			}
			u := typemap.Union(variants...)
			u.Name = obj.Name()
			return u
		}
		d := describeBasic(basic)
		d.Name = obj.Name()
		return d
	}

	if st, ok := t.Underlying().(*types.Struct); ok {
		return c.describeStruct(obj.Name(), st)
	}

	d := c.describe(t.Underlying())
	if d.Name == "" {
		d.Name = obj.Name()
	}
	return d
}

// wellKnownNamed special-cases named types with a conventional wire form.
func wellKnownNamed(obj *types.TypeName) *typemap.TypeDesc {
	pkg := obj.Pkg()
	if pkg == nil {
		return nil
	}
	switch pkg.Path() {
	case "time":
		if obj.Name() == "Time" {
			d := typemap.String()
			d.Format = "date-time"
			d.Name = "Time"
			return d
		}
		if obj.Name() == "Duration" {
			d := typemap.Integer()
			d.Name = "Duration"
			return d
		}
	case "encoding/json":
		if obj.Name() == "RawMessage" {
			return typemap.Any()
		}
	case "github.com/google/uuid":
		if obj.Name() == "UUID" {
			d := typemap.String()
			d.Format = "uuid"
			d.Name = "UUID"
			return d
		}
	}
	return nil
}

// enumValues collects the values of package-level constants declared with
// the named type, in the package scope's (sorted) name order.
func enumValues(t *types.Named, obj *types.TypeName) []any {
	pkg := obj.Pkg()
	if pkg == nil {
		return nil
	}
	var values []any
	for _, name := range pkg.Scope().Names() {
		cnst, ok := pkg.Scope().Lookup(name).(*types.Const)
		if !ok || !types.Identical(cnst.Type(), t) {
			continue
		}
		if v := constValue(cnst.Val()); v != nil {
			values = append(values, v)
		}
	}
	return values
}

func constValue(v constant.Value) any {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i, ok := constant.Int64Val(v); ok {
			return i
		}
	case constant.Float:
		if f, ok := constant.Float64Val(v); ok {
			return f
		}
	case constant.Bool:
		return constant.BoolVal(v)
	}
	return nil
}

func (c *typeConverter) describeStruct(name string, s *types.Struct) *typemap.TypeDesc {
	return typemap.Struct(name, c.structMembers(s)...)
}

func (c *typeConverter) structMembers(s *types.Struct) []typemap.Member {
	var members []typemap.Member
	for i := 0; i < s.NumFields(); i++ {
		f := s.Field(i)
		tag := reflect.StructTag(s.Tag(i)).Get("json")

		// Untagged embedded structs contribute their members inline.
		if f.Embedded() && tag == "" {
			et := f.Type()
			if p, ok := et.(*types.Pointer); ok {
				et = p.Elem()
			}
			if st, ok := et.Underlying().(*types.Struct); ok {
				members = append(members, c.structMembers(st)...)
				continue
			}
		}

		if !f.Exported() {
			continue
		}

		wireName, opts := parseJSONTag(tag)
		if wireName == "-" {
			continue
		}
		if wireName == "" {
			wireName = f.Name()
		}

		_, isPointer := f.Type().(*types.Pointer)
		optional := isPointer || opts["omitempty"] || opts["omitzero"]

		members = append(members, typemap.Member{
			Name:     wireName,
			Type:     c.describe(f.Type()),
			Optional: optional,
		})
	}
	return members
}

func parseJSONTag(tag string) (name string, opts map[string]bool) {
	opts = make(map[string]bool)
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, opt := range parts[1:] {
		opts[opt] = true
	}
	return name, opts
}

func isByte(t types.Type) bool {
	basic, ok := t.(*types.Basic)
	return ok && basic.Kind() == types.Uint8
}
