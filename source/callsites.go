package source

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"

	"github.com/routespec/routespec/typemap"
)

// inputType extracts the decoded request body type from a handler body.
// Three call shapes are recognized, and the first one resolved in source
// order wins:
//
//  1. A generic decode call: body := DecodeJSON[CreateUser](r). The type
//     argument is the input type.
//  2. A pointer-argument decode call: Decode(r, &in) or json.Unmarshal(b,
//     &in). The pointee's declared type is the input type. When the pointee
//     is a map[string]any, the keys indexed with string literals elsewhere
//     in the handler become required properties of unknown type.
//  3. A type assertion on a decode result: in := parse(r).(CreateUser),
//     directly or through an intermediate variable.
//
// A nil return means the handler decodes nothing.
func (a *analyzer) inputType(body *ast.BlockStmt) *typemap.TypeDesc {
	var (
		found *typemap.TypeDesc
		// decoded tracks variables assigned from bare decode calls, for
		// shape 3's intermediate-variable form.
		decoded = make(map[types.Object]bool)
	)

	ast.Inspect(body, func(n ast.Node) bool {
		if found != nil {
			return false
		}

		switch n := n.(type) {
		case *ast.TypeAssertExpr:
			if n.Type == nil {
				return true
			}
			if a.isDecodeCall(n.X) || a.isDecodedVar(n.X, decoded) {
				if t := a.info.TypeOf(n.Type); t != nil {
					found = DescribeType(t)
					return false
				}
			}

		case *ast.AssignStmt:
			for _, rhs := range n.Rhs {
				if !a.isDecodeCall(rhs) {
					continue
				}
				for _, lhs := range n.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						if obj := a.info.ObjectOf(id); obj != nil {
							decoded[obj] = true
						}
					}
				}
			}

		case *ast.CallExpr:
			if !a.isDecodeName(calleeName(n)) {
				return true
			}
			if t := a.genericTypeArg(n); t != nil {
				found = DescribeType(t)
				return false
			}
			if id := pointerArg(n); id != nil {
				obj := a.info.ObjectOf(id)
				if obj == nil {
					return true
				}
				if isStringAnyMap(obj.Type()) {
					found = a.destructuredObject(body, obj)
					return false
				}
				found = DescribeType(obj.Type())
				return false
			}
		}
		return true
	})

	return found
}

// genericTypeArg returns the first explicit type argument of an instantiated
// generic call, or nil.
func (a *analyzer) genericTypeArg(call *ast.CallExpr) types.Type {
	id := calleeIdent(call)
	if id == nil {
		return nil
	}
	inst, ok := a.info.Instances[id]
	if !ok || inst.TypeArgs == nil || inst.TypeArgs.Len() == 0 {
		return nil
	}
	return inst.TypeArgs.At(0)
}

// pointerArg returns the identifier behind the first &ident argument.
func pointerArg(call *ast.CallExpr) *ast.Ident {
	for _, arg := range call.Args {
		unary, ok := arg.(*ast.UnaryExpr)
		if !ok || unary.Op.String() != "&" {
			continue
		}
		if id, ok := unary.X.(*ast.Ident); ok {
			return id
		}
	}
	return nil
}

// destructuredObject builds a struct description from the string-literal
// keys a handler reads out of a decoded map. Key order follows first use;
// the value shapes are unknown.
func (a *analyzer) destructuredObject(body *ast.BlockStmt, obj types.Object) *typemap.TypeDesc {
	var members []typemap.Member
	seen := make(map[string]bool)

	ast.Inspect(body, func(n ast.Node) bool {
		idx, ok := n.(*ast.IndexExpr)
		if !ok {
			return true
		}
		id, ok := idx.X.(*ast.Ident)
		if !ok || a.info.ObjectOf(id) != obj {
			return true
		}
		key, ok := stringLiteral(idx.Index)
		if !ok || seen[key] {
			return true
		}
		seen[key] = true
		members = append(members, typemap.Member{Name: key})
		return true
	})

	return typemap.Struct("", members...)
}

func (a *analyzer) isDecodeCall(e ast.Expr) bool {
	call, ok := ast.Unparen(e).(*ast.CallExpr)
	return ok && a.isDecodeName(calleeName(call))
}

func (a *analyzer) isDecodedVar(e ast.Expr, decoded map[types.Object]bool) bool {
	id, ok := ast.Unparen(e).(*ast.Ident)
	if !ok {
		return false
	}
	obj := a.info.ObjectOf(id)
	return obj != nil && decoded[obj]
}

// calleeIdent unwraps a call's callee to its terminal identifier, looking
// through parens, selectors, and generic instantiation expressions.
func calleeIdent(call *ast.CallExpr) *ast.Ident {
	e := ast.Unparen(call.Fun)
	for {
		switch t := e.(type) {
		case *ast.Ident:
			return t
		case *ast.SelectorExpr:
			return t.Sel
		case *ast.IndexExpr:
			e = t.X
		case *ast.IndexListExpr:
			e = t.X
		default:
			return nil
		}
	}
}

func calleeName(call *ast.CallExpr) string {
	if id := calleeIdent(call); id != nil {
		return id.Name
	}
	return ""
}

func stringLiteral(e ast.Expr) (string, bool) {
	lit, ok := ast.Unparen(e).(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	key, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return key, true
}

// isStringAnyMap reports whether t is map[string]any (or an alias of it).
func isStringAnyMap(t types.Type) bool {
	m, ok := t.Underlying().(*types.Map)
	if !ok {
		return false
	}
	key, ok := m.Key().Underlying().(*types.Basic)
	if !ok || key.Info()&types.IsString == 0 {
		return false
	}
	iface, ok := m.Elem().Underlying().(*types.Interface)
	return ok && iface.Empty()
}
