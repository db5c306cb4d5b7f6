package source

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

var httpMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// analyzer extracts declarations from one type-checked route package.
type analyzer struct {
	info         *types.Info
	fset         *token.FileSet
	decodeNames  map[string]bool
	respondNames map[string]bool
}

func newAnalyzer(info *types.Info, fset *token.FileSet, decodeNames, respondNames []string) *analyzer {
	return &analyzer{
		info:         info,
		fset:         fset,
		decodeNames:  nameSet(decodeNames),
		respondNames: nameSet(respondNames),
	}
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func (a *analyzer) isDecodeName(name string) bool  { return name != "" && a.decodeNames[name] }
func (a *analyzer) isRespondName(name string) bool { return name != "" && a.respondNames[name] }

// unit analyzes one route package's files into a Unit. It returns nil when
// the package declares no handler functions.
func (a *analyzer) unit(id string, files []*ast.File) *Unit {
	routePath, params := RoutePath(id)
	u := &Unit{
		ID:         id,
		Path:       routePath,
		PathParams: params,
		Operations: make(map[string]*Declaration),
	}

	for _, file := range files {
		for _, d := range file.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || fn.Body == nil {
				continue
			}
			method := strings.ToUpper(fn.Name.Name)
			if !httpMethods[method] || !fn.Name.IsExported() {
				continue
			}
			u.Operations[method] = a.declaration(method, routePath, fn)
		}
	}

	if len(u.Operations) == 0 {
		return nil
	}
	return u
}

func (a *analyzer) declaration(method, routePath string, fn *ast.FuncDecl) *Declaration {
	d := &Declaration{
		Method:      method,
		HandlerName: fn.Name.Name,
		Pos:         a.fset.Position(fn.Pos()).String(),
		InputType:   a.inputType(fn.Body),
		Responses:   a.responseHints(fn.Body),
	}

	d.Summary, d.Description = splitDoc(fn.Doc)
	if d.Summary == "" {
		d.Summary = DeriveSummary(method, routePath)
	}
	return d
}

// splitDoc separates a handler doc comment into a one-line summary and the
// remaining description.
func splitDoc(doc *ast.CommentGroup) (summary, description string) {
	if doc == nil {
		return "", ""
	}
	text := strings.TrimSpace(doc.Text())
	if text == "" {
		return "", ""
	}
	lines := strings.SplitN(text, "\n", 2)
	summary = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		description = strings.TrimSpace(lines[1])
	}
	return summary, description
}
