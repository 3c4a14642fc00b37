package filter

import (
	"fmt"
	"strconv"
)

// Builder accumulates predicates and child nodes and produces a normalized
// tree. The zero Builder is not usable; create one with NewBuilder or
// FromTree.
//
// A Builder owns its predicate and child slices; they are never exposed by
// reference and Build performs a defensive copy into the immutable result.
// A Builder is a single-writer accumulator - it must be owned by exactly one
// goroutine during its construction phase.
type Builder struct {
	combinator Combinator
	predicates []Predicate
	children   []Node
}

// NewBuilder returns an empty Builder with the AND combinator pending.
func NewBuilder() *Builder {
	return &Builder{combinator: And}
}

// FromTree reconstructs an editable Builder from a previously built tree.
//
// The reconstruction is not fully general: for a Group it recovers the
// combinator, injects the first Leaf found among top-level children as the
// pending predicates, and routes every other child (later leaves included)
// as built children. Trees with more than one top-level Leaf therefore do
// not rebuild with full fidelity; treat this entry point as a convenience
// for single-leaf-plus-groups shapes.
func FromTree(n Node) *Builder {
	b := NewBuilder()
	switch node := n.(type) {
	case *Leaf:
		b.predicates = append(b.predicates, node.Predicates...)
	case *Group:
		b.combinator = node.Combinator
		leafTaken := false
		for _, child := range node.Children {
			if leaf, ok := child.(*Leaf); ok && !leafTaken {
				b.predicates = append(b.predicates, leaf.Predicates...)
				leafTaken = true
				continue
			}
			b.children = append(b.children, child)
		}
	}
	return b
}

// SetCombinator sets the combinator for the node being built.
func (b *Builder) SetCombinator(c Combinator) *Builder {
	b.combinator = c
	return b
}

// AddPredicate appends a predicate for the given field.
//
// No operator/value-arity validation is performed; the caller is responsible
// for operator discipline (a malformed condition is simply carried through).
func (b *Builder) AddPredicate(field string, op Operator, values ...string) *Builder {
	b.predicates = append(b.predicates, Predicate{
		Field:    field,
		Operator: op,
		Values:   append([]string(nil), values...),
	})
	return b
}

// ReplacePredicate removes every predicate for field, then adds one.
func (b *Builder) ReplacePredicate(field string, op Operator, values ...string) *Builder {
	b.RemovePredicate(field)
	return b.AddPredicate(field, op, values...)
}

// RemovePredicate removes every predicate for field.
func (b *Builder) RemovePredicate(field string) *Builder {
	kept := b.predicates[:0]
	for _, p := range b.predicates {
		if p.Field != field {
			kept = append(kept, p)
		}
	}
	b.predicates = kept
	return b
}

// AddPredicateIfAbsent adds a predicate only when no predicate for field has
// been accumulated yet. It reports whether the predicate was added.
func (b *Builder) AddPredicateIfAbsent(field string, op Operator, values ...string) bool {
	for _, p := range b.predicates {
		if p.Field == field {
			return false
		}
	}
	b.AddPredicate(field, op, values...)
	return true
}

// Typed convenience helpers. Values are stringified with the natural,
// locale-independent string form (see ValueString).

// Eq adds field = value.
func (b *Builder) Eq(field string, value any) *Builder {
	return b.AddPredicate(field, OpEq, ValueString(value))
}

// Neq adds field != value.
func (b *Builder) Neq(field string, value any) *Builder {
	return b.AddPredicate(field, OpNeq, ValueString(value))
}

// Contains adds a substring-match predicate.
func (b *Builder) Contains(field string, value any) *Builder {
	return b.AddPredicate(field, OpContains, ValueString(value))
}

// StartsWith adds a prefix-match predicate.
func (b *Builder) StartsWith(field string, value any) *Builder {
	return b.AddPredicate(field, OpStartsWith, ValueString(value))
}

// EndsWith adds a suffix-match predicate.
func (b *Builder) EndsWith(field string, value any) *Builder {
	return b.AddPredicate(field, OpEndsWith, ValueString(value))
}

// In adds a set-membership predicate. An empty value list is legal; its
// meaning belongs to the query-translation layer.
func (b *Builder) In(field string, values ...any) *Builder {
	return b.AddPredicate(field, OpIn, valueStrings(values)...)
}

// NotIn adds a negated set-membership predicate.
func (b *Builder) NotIn(field string, values ...any) *Builder {
	return b.AddPredicate(field, OpNotIn, valueStrings(values)...)
}

// Between adds a range predicate with inclusive bounds.
func (b *Builder) Between(field string, low, high any) *Builder {
	return b.AddPredicate(field, OpBetween, ValueString(low), ValueString(high))
}

// Gt adds field > value.
func (b *Builder) Gt(field string, value any) *Builder {
	return b.AddPredicate(field, OpGt, ValueString(value))
}

// Gte adds field >= value.
func (b *Builder) Gte(field string, value any) *Builder {
	return b.AddPredicate(field, OpGte, ValueString(value))
}

// Lt adds field < value.
func (b *Builder) Lt(field string, value any) *Builder {
	return b.AddPredicate(field, OpLt, ValueString(value))
}

// Lte adds field <= value.
func (b *Builder) Lte(field string, value any) *Builder {
	return b.AddPredicate(field, OpLte, ValueString(value))
}

// IsNull adds a nullability predicate.
func (b *Builder) IsNull(field string) *Builder {
	return b.AddPredicate(field, OpIsNull)
}

// IsNotNull adds a non-nullability predicate.
func (b *Builder) IsNotNull(field string) *Builder {
	return b.AddPredicate(field, OpIsNotNull)
}

// AddChild appends an already-built node. Nil children are ignored.
func (b *Builder) AddChild(n Node) *Builder {
	if n != nil {
		b.children = append(b.children, n)
	}
	return b
}

// Group builds a nested Builder with the given combinator, applies
// initialize, and folds its result in as a child when non-absent.
func (b *Builder) Group(c Combinator, initialize func(*Builder)) *Builder {
	nested := NewBuilder().SetCombinator(c)
	initialize(nested)
	return b.AddChild(nested.buildNode())
}

// And adds a nested AND group.
func (b *Builder) And(initialize func(*Builder)) *Builder {
	return b.Group(And, initialize)
}

// Or adds a nested OR group.
func (b *Builder) Or(initialize func(*Builder)) *Builder {
	return b.Group(Or, initialize)
}

// Not adds a nested NOT group.
func (b *Builder) Not(initialize func(*Builder)) *Builder {
	return b.Group(Not, initialize)
}

// Build combines the accumulated predicates and children into a normalized
// tree and wraps it in a FilterRequest. It returns nil when nothing was
// accumulated. The Builder remains usable after Build; the returned tree
// does not alias the Builder's internal slices.
func (b *Builder) Build() *FilterRequest {
	root := b.buildNode()
	if root == nil {
		return nil
	}
	return &FilterRequest{Root: root}
}

// buildNode combines predicates and children per the shared combine rule,
// keeping output-shape parity with the wire codec.
func (b *Builder) buildNode() Node {
	var leaf *Leaf
	if len(b.predicates) > 0 {
		leaf = &Leaf{Predicates: append([]Predicate(nil), b.predicates...)}
	}
	children := append([]Node(nil), b.children...)
	return combine(b.combinator, leaf, children)
}

// combine merges an optional leaf with already-decoded/built children.
//
// The leaf-only case deliberately skips generic normalization: a bare leaf
// is returned when the combinator is AND, and Group(c, [leaf]) otherwise so
// the combinator survives a round-trip. Both the Builder and the wire codec
// use this single function; output-shape parity between them depends on it.
func combine(c Combinator, leaf *Leaf, children []Node) Node {
	if len(children) == 0 {
		if leaf == nil {
			return nil
		}
		if c == And {
			return leaf
		}
		return &Group{Combinator: c, Children: []Node{leaf}}
	}
	nodes := make([]Node, 0, len(children)+1)
	if leaf != nil {
		nodes = append(nodes, leaf)
	}
	nodes = append(nodes, children...)
	return Normalize(&Group{Combinator: c, Children: nodes})
}

// ValueString renders a value in its natural, locale-independent string
// form: booleans as "true"/"false", integers in base 10, floats in Go's
// shortest form, strings unchanged. The conversion is total - unknown types
// fall back to fmt.Sprint.
func ValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

func valueStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = ValueString(v)
	}
	return out
}
