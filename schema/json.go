package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// nodeWire is the JSON-Schema-like wire form of a Node. Field order here is
// the field order in rendered output.
type nodeWire struct {
	Ref         string          `json:"$ref,omitempty"`
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Format      string          `json:"format,omitempty"`
	Pattern     string          `json:"pattern,omitempty"`
	MinLength   *int            `json:"minLength,omitempty"`
	MaxLength   *int            `json:"maxLength,omitempty"`
	Items       *Node           `json:"items,omitempty"`
	Properties  json.RawMessage `json:"properties,omitempty"`
	Required    []string        `json:"required,omitempty"`
	Enum        []any           `json:"enum,omitempty"`
	AnyOf       []*Node         `json:"anyOf,omitempty"`
}

// MarshalJSON renders the node as a JSON-Schema-like object. Object
// properties are written in insertion order so repeated synthesis passes
// produce byte-identical documents.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}

	w := nodeWire{Description: n.Description}

	switch n.Kind {
	case KindUnknown:
		// Empty schema: accepts anything.
	case KindString:
		w.Type = "string"
		w.Format = n.Format
		w.Pattern = n.Pattern
		w.MinLength = n.MinLength
		w.MaxLength = n.MaxLength
	case KindNumber:
		if n.IsInteger {
			w.Type = "integer"
		} else {
			w.Type = "number"
		}
	case KindBoolean:
		w.Type = "boolean"
	case KindNull:
		w.Type = "null"
	case KindArray:
		w.Type = "array"
		if n.Items != nil {
			w.Items = n.Items
		}
	case KindObject:
		w.Type = "object"
		props, err := marshalProperties(n.Properties)
		if err != nil {
			return nil, err
		}
		w.Properties = props
		w.Required = n.Required
	case KindEnum:
		w.Enum = n.Values
	case KindUnion:
		w.AnyOf = n.Variants
	case KindReference:
		w.Ref = n.Target
	default:
		return nil, fmt.Errorf("schema: cannot marshal node of kind %d", n.Kind)
	}

	return json.Marshal(w)
}

// marshalProperties renders the ordered property map as a JSON object,
// preserving insertion order.
func marshalProperties(p *Properties) (json.RawMessage, error) {
	if p == nil || p.Len() == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.Get(name))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON-Schema-like object back into a Node. Shapes
// the model cannot represent degrade to KindUnknown; required entries naming
// undeclared properties are dropped to restore the required-subset invariant.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	*n = Node{Description: w.Description}

	switch {
	case w.Ref != "":
		n.Kind = KindReference
		n.Target = w.Ref
	case len(w.Enum) > 0:
		n.Kind = KindEnum
		n.Values = w.Enum
	case len(w.AnyOf) > 0:
		n.Kind = KindUnion
		n.Variants = w.AnyOf
	default:
		switch w.Type {
		case "string":
			n.Kind = KindString
			n.Format = w.Format
			n.Pattern = w.Pattern
			n.MinLength = w.MinLength
			n.MaxLength = w.MaxLength
		case "number", "integer":
			n.Kind = KindNumber
			n.IsInteger = w.Type == "integer"
		case "boolean":
			n.Kind = KindBoolean
		case "null":
			n.Kind = KindNull
		case "array":
			n.Kind = KindArray
			n.Items = w.Items
		case "object":
			n.Kind = KindObject
			props, err := unmarshalProperties(w.Properties)
			if err != nil {
				return err
			}
			n.Properties = props
			n.Required = w.Required
			n.normalizeRequired()
		default:
			n.Kind = KindUnknown
		}
	}

	return nil
}

// unmarshalProperties decodes a JSON object into an ordered property map,
// preserving the key order of the document.
func unmarshalProperties(raw json.RawMessage) (*Properties, error) {
	props := NewProperties()
	if len(raw) == 0 {
		return props, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: properties: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("schema: properties must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: properties: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("schema: properties: non-string key %v", keyTok)
		}
		var child Node
		if err := dec.Decode(&child); err != nil {
			return nil, fmt.Errorf("schema: property %q: %w", key, err)
		}
		props.Set(key, &child)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: properties: %w", err)
	}

	return props, nil
}
