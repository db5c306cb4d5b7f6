package source

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// RoutePath converts a unit directory (relative to the routes root) into a
// route path template. Bracketed directory names become path parameters:
// [id], [[id]], and [...id] all render as {id}. The returned names list the
// parameters in path order.
func RoutePath(dir string) (string, []string) {
	dir = path.Clean(strings.Trim(dir, "/"))
	if dir == "." || dir == "" {
		return "/", nil
	}

	var (
		segments []string
		params   []string
	)
	for _, seg := range strings.Split(dir, "/") {
		if name, ok := paramName(seg); ok {
			segments = append(segments, "{"+name+"}")
			params = append(params, name)
			continue
		}
		segments = append(segments, seg)
	}
	return "/" + strings.Join(segments, "/"), params
}

// paramName extracts the parameter name from a bracketed segment.
func paramName(seg string) (string, bool) {
	if !strings.HasPrefix(seg, "[") || !strings.HasSuffix(seg, "]") {
		return "", false
	}
	name := strings.TrimSuffix(strings.TrimPrefix(seg, "["), "]")
	// Optional segments use doubled brackets, catch-alls a leading ellipsis.
	name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
	name = strings.TrimPrefix(name, "...")
	if name == "" {
		return "", false
	}
	return name, true
}

// DeriveSummary builds a human-readable operation summary from the method
// and route path, used when the handler carries no doc comment.
// DeriveSummary("GET", "/users/{id}") == "Get Users Id".
func DeriveSummary(method, routePath string) string {
	words := []string{titler.String(strings.ToLower(method))}
	for _, seg := range strings.Split(strings.Trim(routePath, "/"), "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		words = append(words, titler.String(seg))
	}
	return strings.Join(words, " ")
}
