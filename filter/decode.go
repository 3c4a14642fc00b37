package filter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError indicates that wire text could not be decoded into a tree.
// Silent drops (conditions missing operator-required values, unknown
// operators) are not errors; DecodeError is reserved for malformed or
// policy-violating input.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode filter: %s: %v", e.Message, e.Err)
	}
	return "decode filter: " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder decodes wire JSON into normalized filter trees.
//
// The zero value implements the reference decode semantics: no depth limit
// and merge semantics when filters and children appear at the same level.
type Decoder struct {
	// MaxDepth bounds node nesting on untrusted input. Zero means
	// unlimited (the reference behavior). The root counts as depth 1.
	MaxDepth int

	// Strict enforces the filters/children mutual-exclusivity rule as an
	// explicit pre-check over the raw wire shape, before structural
	// decoding. The reference algorithm merges both; merge-then-validate
	// is NOT equivalent to this pre-check, which is why it runs first.
	Strict bool
}

// Decode decodes raw wire text with the default (reference) Decoder.
func Decode(data []byte) (*FilterRequest, error) {
	return Decoder{}.Decode(data)
}

// Decode parses raw wire text into a normalized FilterRequest.
//
// Blank input yields (nil, nil) - absence, not an error. Input that is not
// a JSON object fails with a *DecodeError. Within a well-formed body the
// decoding is lenient: unknown keys are ignored and malformed conditions
// are dropped, never fatal. Decode never returns a non-nil request with a
// nil root; absence of any surviving content yields (nil, nil).
func (d Decoder) Decode(data []byte) (*FilterRequest, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var body wireNode
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, &DecodeError{Message: "malformed request body", Err: err}
	}

	if d.Strict {
		if err := checkExclusive(body, ""); err != nil {
			return nil, err
		}
	}

	root, err := d.decodeNode(body, 1)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	return &FilterRequest{Root: root}, nil
}

// decodeNode decodes one wire node and its subtree. The result is always
// normalized (possibly nil).
func (d Decoder) decodeNode(w wireNode, depth int) (Node, error) {
	if d.MaxDepth > 0 && depth > d.MaxDepth {
		return nil, &DecodeError{Message: fmt.Sprintf("node nesting exceeds %d levels", d.MaxDepth)}
	}

	combinator, err := decodeCombinator(w.Combinator)
	if err != nil {
		return nil, err
	}

	leaf := decodeLeaf(w.Filters)

	children := make([]Node, 0, len(w.Children))
	for _, child := range w.Children {
		node, err := d.decodeNode(child, depth+1)
		if err != nil {
			return nil, err
		}
		if node != nil {
			children = append(children, node)
		}
	}

	return combine(combinator, leaf, children), nil
}

// decodeCombinator parses the combinator name, defaulting to AND when the
// key is absent. An unknown name is structural damage, not a droppable
// condition, so it fails.
func decodeCombinator(name string) (Combinator, error) {
	if name == "" {
		return And, nil
	}
	c := Combinator(name)
	if !c.Valid() {
		return "", &DecodeError{Message: fmt.Sprintf("unknown combinator %q", name)}
	}
	return c, nil
}

// decodeLeaf derives predicates from the filters map, preserving field order
// and per-field condition order. Malformed conditions are dropped silently:
//
//   - IN/NOT_IN/BETWEEN without a values key (an explicit empty array is
//     kept - it is a legal predicate whose meaning belongs downstream)
//   - unknown operator names
//
// IS_NULL/IS_NOT_NULL conditions have their values forced to empty no
// matter what was supplied; every other operator takes the singleton list
// of the supplied value, or no values at all.
func decodeLeaf(filters fieldMap) *Leaf {
	var predicates []Predicate
	for _, entry := range filters {
		for _, cond := range entry.Conditions {
			op := Operator(cond.Op)
			if !op.Valid() {
				continue
			}
			var values []string
			switch {
			case op.TakesValueList():
				if cond.Values == nil {
					continue
				}
				values = append([]string(nil), (*cond.Values)...)
			case op.Nullary():
				values = nil
			default:
				if cond.Value != nil {
					values = []string{*cond.Value}
				}
			}
			predicates = append(predicates, Predicate{
				Field:    entry.Field,
				Operator: op,
				Values:   values,
			})
		}
	}
	if len(predicates) == 0 {
		return nil
	}
	return &Leaf{Predicates: predicates}
}

// checkExclusive walks the raw wire shape rejecting any node that carries
// both filters and children. Runs before structural decoding.
func checkExclusive(w wireNode, path string) error {
	if len(w.Filters) > 0 && len(w.Children) > 0 {
		where := path
		if where == "" {
			where = "request body"
		}
		return &DecodeError{Message: where + " carries both filters and children"}
	}
	for i, child := range w.Children {
		childPath := fmt.Sprintf("children[%d]", i)
		if path != "" {
			childPath = path + "." + childPath
		}
		if err := checkExclusive(child, childPath); err != nil {
			return err
		}
	}
	return nil
}
