package source

import (
	"go/ast"
	"go/constant"
	"go/types"
	"strconv"

	"github.com/routespec/routespec/typemap"
)

// responseHints extracts the observed responses from a handler body. Three
// respond-call shapes are recognized:
//
//	JSON(w, payload)          -> status 200
//	JSON(w, 201, payload)     -> the literal (or constant) status
//	JSON(w, status, payload)  -> one hint per integer literal assigned to
//	                             the status variable in the handler
//
// A status expression with no resolvable literal value yields a single
// hint under "200", the same default as a call with no status argument.
func (a *analyzer) responseHints(body *ast.BlockStmt) []ResponseHint {
	var hints []ResponseHint

	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !a.isRespondName(calleeName(call)) {
			return true
		}

		var statusExpr, payloadExpr ast.Expr
		switch len(call.Args) {
		case 1:
			payloadExpr = call.Args[0]
		case 2:
			payloadExpr = call.Args[1]
		case 3:
			statusExpr = call.Args[1]
			payloadExpr = call.Args[2]
		default:
			return true
		}

		payload := a.payloadType(payloadExpr)

		if statusExpr == nil {
			hints = append(hints, ResponseHint{Status: "200", Type: payload})
			return true
		}

		for _, status := range a.statusValues(body, statusExpr) {
			hints = append(hints, ResponseHint{Status: status, Type: payload})
		}
		return true
	})

	return hints
}

func (a *analyzer) payloadType(e ast.Expr) *typemap.TypeDesc {
	tv, ok := a.info.Types[ast.Unparen(e)]
	if !ok || tv.Type == nil {
		return nil
	}
	if basic, ok := tv.Type.(*types.Basic); ok && basic.Kind() == types.UntypedNil {
		return nil
	}
	return DescribeType(tv.Type)
}

// statusValues resolves a status expression to concrete code strings. A
// constant expression resolves directly; a variable resolves to the set of
// integer constants assigned to it anywhere in the handler, in assignment
// order.
func (a *analyzer) statusValues(body *ast.BlockStmt, e ast.Expr) []string {
	e = ast.Unparen(e)

	if code, ok := a.constStatus(e); ok {
		return []string{code}
	}

	id, ok := e.(*ast.Ident)
	if !ok {
		return []string{"200"}
	}
	obj := a.info.ObjectOf(id)
	if obj == nil {
		return []string{"200"}
	}

	var (
		codes []string
		seen  = make(map[string]bool)
	)
	ast.Inspect(body, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok {
			return true
		}
		for i, lhs := range assign.Lhs {
			lid, ok := lhs.(*ast.Ident)
			if !ok || a.info.ObjectOf(lid) != obj || i >= len(assign.Rhs) {
				continue
			}
			if code, ok := a.constStatus(assign.Rhs[i]); ok && !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		return true
	})

	if len(codes) == 0 {
		return []string{"200"}
	}
	return codes
}

// constStatus resolves a compile-time constant integer expression to a
// status code string. Named constants such as http.StatusCreated resolve
// through their constant value.
func (a *analyzer) constStatus(e ast.Expr) (string, bool) {
	tv, ok := a.info.Types[ast.Unparen(e)]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.Int {
		return "", false
	}
	code, ok := constant.Int64Val(tv.Value)
	if !ok || code < 100 || code > 599 {
		return "", false
	}
	return strconv.FormatInt(code, 10), true
}
