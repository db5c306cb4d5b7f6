package descriptor

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ToFragment converts an operation into the generic map form consumed by
// the merge engine. Schema nodes appear in their wire form, so fragment
// merging operates on plain JSON trees.
func ToFragment(op *Operation) (map[string]any, error) {
	if op == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("descriptor: encoding operation fragment: %w", err)
	}
	var frag map[string]any
	if err := json.Unmarshal(raw, &frag); err != nil {
		return nil, fmt.Errorf("descriptor: decoding operation fragment: %w", err)
	}
	return frag, nil
}

// FromFragment converts a merged fragment back into a typed operation.
// Unknown keys are dropped; malformed schema subtrees are an error rather
// than a silent Unknown node.
func FromFragment(frag map[string]any) (*Operation, error) {
	raw, err := json.Marshal(frag)
	if err != nil {
		return nil, fmt.Errorf("descriptor: encoding merged fragment: %w", err)
	}
	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("descriptor: decoding merged fragment: %w", err)
	}
	return &op, nil
}
