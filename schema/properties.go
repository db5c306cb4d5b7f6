package schema

// Properties is an insertion-ordered map of property name to schema node.
// Order matters for deterministic output: two synthesis passes over the same
// source unit must render byte-identical documents.
type Properties struct {
	keys  []string
	nodes map[string]*Node
}

// NewProperties returns an empty ordered property map.
func NewProperties() *Properties {
	return &Properties{nodes: make(map[string]*Node)}
}

// Set inserts or replaces the named property. First insertion fixes the
// position of the name; replacement keeps it.
func (p *Properties) Set(name string, node *Node) {
	if _, exists := p.nodes[name]; !exists {
		p.keys = append(p.keys, name)
	}
	p.nodes[name] = node
}

// Get returns the named property node, or nil when absent.
func (p *Properties) Get(name string) *Node {
	if p == nil {
		return nil
	}
	return p.nodes[name]
}

// Delete removes the named property if present.
func (p *Properties) Delete(name string) {
	if _, exists := p.nodes[name]; !exists {
		return
	}
	delete(p.nodes, name)
	for i, k := range p.keys {
		if k == name {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the property names in insertion order. The returned slice is
// shared; callers must not modify it.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return p.keys
}

// Range calls fn for each property in insertion order until fn returns false.
func (p *Properties) Range(fn func(name string, node *Node) bool) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		if !fn(k, p.nodes[k]) {
			return
		}
	}
}
