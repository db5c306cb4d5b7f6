package httpvalidator

import (
	"strconv"

	"github.com/routespec/routespec/schema"
)

// coerceParam converts a raw parameter string to the type its schema
// expects, so "42" validates against a number node and "true" against a
// boolean node. When the string cannot be converted the raw string is
// returned and the schema validator reports the type mismatch.
func coerceParam(raw string, node *schema.Node) any {
	if node == nil {
		return raw
	}
	switch node.Kind {
	case schema.KindNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case schema.KindBoolean:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case schema.KindEnum:
		// Enum literals may be numeric; prefer the numeric reading when
		// every allowed value is a number.
		if allNumericValues(node.Values) {
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				return n
			}
		}
	case schema.KindUnion:
		for _, variant := range node.Variants {
			coerced := coerceParam(raw, variant)
			if _, isString := coerced.(string); !isString {
				return coerced
			}
		}
	}
	return raw
}

func allNumericValues(values []any) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, ok := asNumber(v); !ok {
			return false
		}
	}
	return true
}
