package httpvalidator

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/routespec/routespec/schema"
)

// Violation keywords.
const (
	keywordType      = "type"
	keywordRequired  = "required"
	keywordFormat    = "format"
	keywordPattern   = "pattern"
	keywordMinLength = "minLength"
	keywordMaxLength = "maxLength"
	keywordEnum      = "enum"
)

// maxCachedPatterns caps the compiled-pattern cache. When the cap is hit
// the whole cache is dropped rather than evicting entries one by one.
const maxCachedPatterns = 1000

// SchemaValidator checks decoded JSON values against schema nodes. It is
// safe for concurrent use; compiled patterns are cached across calls.
type SchemaValidator struct {
	// patternCache caches compiled patterns (sync.Map[string, *regexp.Regexp]).
	patternCache sync.Map
	patternCount atomic.Int32

	// redactValues keeps actual values out of violation messages. Enabled
	// when validating headers and cookies, which may carry credentials.
	redactValues bool
}

// NewSchemaValidator creates a SchemaValidator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// NewRedactingSchemaValidator creates a SchemaValidator whose violation
// messages never include the offending value.
func NewRedactingSchemaValidator() *SchemaValidator {
	return &SchemaValidator{redactValues: true}
}

// Validate checks data against node, returning one Detail per violation.
// A nil or unknown node accepts anything. Reference nodes validate nothing,
// as the validator carries no schema registry to resolve them against.
func (v *SchemaValidator) Validate(data any, node *schema.Node, path string) []Detail {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case schema.KindUnknown, schema.KindReference:
		return nil

	case schema.KindNull:
		if data != nil {
			return []Detail{v.violation(path, keywordType, "expected null", data)}
		}
		return nil

	case schema.KindString:
		s, ok := data.(string)
		if !ok {
			return []Detail{v.typeMismatch(path, "string", data)}
		}
		return v.validateString(s, node, path)

	case schema.KindNumber:
		n, ok := asNumber(data)
		if !ok {
			want := "number"
			if node.IsInteger {
				want = "integer"
			}
			return []Detail{v.typeMismatch(path, want, data)}
		}
		if node.IsInteger && n != float64(int64(n)) {
			return []Detail{v.violation(path, keywordType, "value must be an integer", data)}
		}
		return nil

	case schema.KindBoolean:
		if _, ok := data.(bool); !ok {
			return []Detail{v.typeMismatch(path, "boolean", data)}
		}
		return nil

	case schema.KindArray:
		arr, ok := data.([]any)
		if !ok {
			return []Detail{v.typeMismatch(path, "array", data)}
		}
		var details []Detail
		if node.Items != nil {
			for i, item := range arr {
				details = append(details, v.Validate(item, node.Items, fmt.Sprintf("%s[%d]", path, i))...)
			}
		}
		return details

	case schema.KindObject:
		obj, ok := data.(map[string]any)
		if !ok {
			return []Detail{v.typeMismatch(path, "object", data)}
		}
		return v.validateObject(obj, node, path)

	case schema.KindEnum:
		return v.validateEnum(data, node, path)

	case schema.KindUnion:
		for _, variant := range node.Variants {
			if len(v.Validate(data, variant, path)) == 0 {
				return nil
			}
		}
		return []Detail{v.violation(path, keywordType, "value does not match any allowed variant", data)}

	default:
		return nil
	}
}

func (v *SchemaValidator) validateString(s string, node *schema.Node, path string) []Detail {
	var details []Detail

	if node.MinLength != nil && len(s) < *node.MinLength {
		details = append(details, Detail{
			Path:    path,
			Keyword: keywordMinLength,
			Message: fmt.Sprintf("string length %d is less than minimum %d", len(s), *node.MinLength),
		})
	}
	if node.MaxLength != nil && len(s) > *node.MaxLength {
		details = append(details, Detail{
			Path:    path,
			Keyword: keywordMaxLength,
			Message: fmt.Sprintf("string length %d exceeds maximum %d", len(s), *node.MaxLength),
		})
	}

	if node.Pattern != "" {
		matched, err := v.matchPattern(node.Pattern, s)
		if err != nil {
			details = append(details, Detail{
				Path:    path,
				Keyword: keywordPattern,
				Message: fmt.Sprintf("invalid pattern %q: %v", node.Pattern, err),
			})
		} else if !matched {
			details = append(details, Detail{
				Path:    path,
				Keyword: keywordPattern,
				Message: fmt.Sprintf("string does not match pattern %q", node.Pattern),
			})
		}
	}

	if node.Format != "" {
		if d, ok := v.checkFormat(s, node.Format, path); !ok {
			details = append(details, d)
		}
	}
	return details
}

func (v *SchemaValidator) validateObject(obj map[string]any, node *schema.Node, path string) []Detail {
	var details []Detail

	for _, name := range node.Required {
		if _, exists := obj[name]; !exists {
			details = append(details, Detail{
				Path:    path + "." + name,
				Keyword: keywordRequired,
				Message: fmt.Sprintf("required property %q is missing", name),
			})
		}
	}

	if node.Properties != nil {
		node.Properties.Range(func(name string, prop *schema.Node) bool {
			if value, exists := obj[name]; exists {
				details = append(details, v.Validate(value, prop, path+"."+name)...)
			}
			return true
		})
	}
	return details
}

func (v *SchemaValidator) validateEnum(data any, node *schema.Node, path string) []Detail {
	for _, allowed := range node.Values {
		if enumEqual(data, allowed) {
			return nil
		}
	}
	return []Detail{v.violation(path, keywordEnum, "value is not one of the allowed values", data)}
}

// enumEqual compares a decoded JSON value with an enum literal. Numeric
// literals may arrive as int or int64 from type analysis while decoded JSON
// carries float64, so numbers compare by value.
func enumEqual(data, allowed any) bool {
	if dn, ok := asNumber(data); ok {
		if an, ok := asNumber(allowed); ok {
			return dn == an
		}
		return false
	}
	return reflect.DeepEqual(data, allowed)
}

// checkFormat validates the formats the synthesizer emits. Unrecognized
// formats pass, matching JSON Schema's annotation-by-default stance.
func (v *SchemaValidator) checkFormat(s, format, path string) (Detail, bool) {
	valid := true
	switch format {
	case "email":
		_, err := mail.ParseAddress(s)
		valid = err == nil && !strings.Contains(s, " ")
	case "uuid":
		valid = uuidPattern.MatchString(s)
	case "date":
		_, err := time.Parse("2006-01-02", s)
		valid = err == nil
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		valid = err == nil
	}
	if valid {
		return Detail{}, true
	}
	return v.violation(path, keywordFormat, fmt.Sprintf("value is not a valid %s", format), s), false
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// matchPattern compiles and caches the pattern, dropping the cache wholesale
// when it grows past maxCachedPatterns.
func (v *SchemaValidator) matchPattern(pattern, s string) (bool, error) {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}

	if v.patternCount.Load() >= maxCachedPatterns {
		v.patternCache.Range(func(key, _ any) bool {
			v.patternCache.Delete(key)
			return true
		})
		v.patternCount.Store(0)
	}
	if _, loaded := v.patternCache.LoadOrStore(pattern, re); !loaded {
		v.patternCount.Add(1)
	}
	return re.MatchString(s), nil
}

// violation builds a Detail, appending the offending value to the message
// unless redaction is on.
func (v *SchemaValidator) violation(path, keyword, message string, value any) Detail {
	if !v.redactValues {
		message = fmt.Sprintf("%s (got %v)", message, value)
	}
	return Detail{Path: path, Keyword: keyword, Message: message}
}

func (v *SchemaValidator) typeMismatch(path, want string, data any) Detail {
	msg := fmt.Sprintf("expected type %s but got %s", want, jsonTypeName(data))
	return Detail{Path: path, Keyword: keywordType, Message: msg}
}

func jsonTypeName(data any) string {
	switch data.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", data)
	}
}

func asNumber(data any) (float64, bool) {
	switch n := data.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
