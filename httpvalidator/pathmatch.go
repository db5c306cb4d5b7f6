package httpvalidator

import (
	"fmt"
	"sort"
	"strings"
)

// pathMatcher matches concrete request paths against one route template by
// comparing segments, so no regular expressions are compiled per route.
type pathMatcher struct {
	// template is the original route template, e.g. "/users/{id}".
	template string

	// segments holds the template split on "/"; param[i] marks segment i
	// as a parameter and names[i] holds its name.
	segments []string
	param    []bool
	names    []string

	// literals counts non-parameter segments, for specificity ordering.
	literals int
}

func newPathMatcher(template string) (*pathMatcher, error) {
	if template == "" || template[0] != '/' {
		return nil, fmt.Errorf("httpvalidator: route template %q must start with /", template)
	}

	m := &pathMatcher{template: template}
	seen := make(map[string]bool)

	for _, seg := range splitPath(template) {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := seg[1 : len(seg)-1]
			if name == "" {
				return nil, fmt.Errorf("httpvalidator: empty path parameter in template %q", template)
			}
			if seen[name] {
				return nil, fmt.Errorf("httpvalidator: duplicate path parameter %q in template %q", name, template)
			}
			seen[name] = true
			m.segments = append(m.segments, seg)
			m.param = append(m.param, true)
			m.names = append(m.names, name)
			continue
		}
		if strings.ContainsAny(seg, "{}") {
			return nil, fmt.Errorf("httpvalidator: malformed segment %q in template %q", seg, template)
		}
		m.segments = append(m.segments, seg)
		m.param = append(m.param, false)
		m.names = append(m.names, "")
		m.literals++
	}
	return m, nil
}

// match extracts parameter values when path matches the template. Parameter
// segments match any single non-empty segment.
func (m *pathMatcher) match(path string) (map[string]string, bool) {
	segs := splitPath(path)
	if len(segs) != len(m.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range segs {
		if m.param[i] {
			if seg == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[m.names[i]] = seg
			continue
		}
		if seg != m.segments[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// matcherSet matches a path against a set of route templates, most specific
// first: more literal segments win, then fewer parameters, then lexical
// template order for determinism.
type matcherSet struct {
	matchers []*pathMatcher
}

func newMatcherSet(templates []string) (*matcherSet, error) {
	set := &matcherSet{matchers: make([]*pathMatcher, 0, len(templates))}
	for _, tmpl := range templates {
		m, err := newPathMatcher(tmpl)
		if err != nil {
			return nil, err
		}
		set.matchers = append(set.matchers, m)
	}

	sort.Slice(set.matchers, func(i, j int) bool {
		a, b := set.matchers[i], set.matchers[j]
		if a.literals != b.literals {
			return a.literals > b.literals
		}
		aParams, bParams := len(a.segments)-a.literals, len(b.segments)-b.literals
		if aParams != bParams {
			return aParams < bParams
		}
		return a.template < b.template
	})
	return set, nil
}

// match returns the first matching template and its extracted parameters.
func (s *matcherSet) match(path string) (string, map[string]string, bool) {
	for _, m := range s.matchers {
		if params, ok := m.match(path); ok {
			return m.template, params, true
		}
	}
	return "", nil, false
}
