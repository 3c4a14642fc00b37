package filter

// Operator identifies a predicate comparison.
type Operator string

const (
	OpEq         Operator = "EQ"
	OpNeq        Operator = "NEQ"
	OpContains   Operator = "CONTAINS"
	OpStartsWith Operator = "STARTS_WITH"
	OpEndsWith   Operator = "ENDS_WITH"
	OpIn         Operator = "IN"
	OpNotIn      Operator = "NOT_IN"
	OpBetween    Operator = "BETWEEN"
	OpGt         Operator = "GT"
	OpGte        Operator = "GTE"
	OpLt         Operator = "LT"
	OpLte        Operator = "LTE"
	OpIsNull     Operator = "IS_NULL"
	OpIsNotNull  Operator = "IS_NOT_NULL"
)

// Operators lists every known operator in wire-name order.
var Operators = []Operator{
	OpEq, OpNeq, OpContains, OpStartsWith, OpEndsWith,
	OpIn, OpNotIn, OpBetween,
	OpGt, OpGte, OpLt, OpLte,
	OpIsNull, OpIsNotNull,
}

// Valid reports whether o is one of the known operators.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpContains, OpStartsWith, OpEndsWith,
		OpIn, OpNotIn, OpBetween,
		OpGt, OpGte, OpLt, OpLte,
		OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// TakesValueList reports whether the operator carries a values list on the
// wire (IN, NOT_IN, BETWEEN). All other operators carry at most one value.
func (o Operator) TakesValueList() bool {
	return o == OpIn || o == OpNotIn || o == OpBetween
}

// Nullary reports whether the operator never carries values
// (IS_NULL, IS_NOT_NULL).
func (o Operator) Nullary() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// Combinator identifies how a Group combines its children.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
	Not Combinator = "NOT"
)

// Valid reports whether c is AND, OR or NOT.
func (c Combinator) Valid() bool {
	return c == And || c == Or || c == Not
}

// Predicate is one field/operator/value-list condition.
//
// Field is a non-empty opaque identifier; this package never resolves it
// against a schema. Values is an ordered sequence of strings; the value-count
// convention per operator is:
//
//   - IN / NOT_IN / BETWEEN: zero or more (an empty list is legal and its
//     meaning belongs to the query-translation layer)
//   - IS_NULL / IS_NOT_NULL: always zero
//   - all others: zero or one (zero denotes a value-less predicate)
type Predicate struct {
	Field    string
	Operator Operator
	Values   []string
}

// Equal reports structural equality with q, including value order.
func (p Predicate) Equal(q Predicate) bool {
	if p.Field != q.Field || p.Operator != q.Operator || len(p.Values) != len(q.Values) {
		return false
	}
	for i, v := range p.Values {
		if v != q.Values[i] {
			return false
		}
	}
	return true
}

// Node is a filter tree node.
//
// This is a sealed interface with exactly two implementations, *Leaf and
// *Group. The marker method prevents external implementations so every
// consumer's type switch over {Leaf, Group} is exhaustive. A nil Node means
// "no filter" (absent).
type Node interface {
	// Equal reports structural equality with other, preserving predicate
	// and child order.
	Equal(other Node) bool

	filterNode() // Marker method - seals interface to this package
}

// Leaf holds a flat list of predicates, implicitly conjoined.
//
// A normalized Leaf always has at least one predicate. Predicate order is
// insertion order; it affects wire round-tripping, not filter semantics.
type Leaf struct {
	Predicates []Predicate
}

func (*Leaf) filterNode() {}

// NewLeaf builds a Leaf from the given predicates.
func NewLeaf(predicates ...Predicate) *Leaf {
	return &Leaf{Predicates: predicates}
}

// Equal reports structural equality with other.
func (l *Leaf) Equal(other Node) bool {
	o, ok := other.(*Leaf)
	if !ok {
		return false
	}
	if l == nil || o == nil {
		return l == o
	}
	if len(l.Predicates) != len(o.Predicates) {
		return false
	}
	for i, p := range l.Predicates {
		if !p.Equal(o.Predicates[i]) {
			return false
		}
	}
	return true
}

// Group combines child nodes under a combinator.
//
// A normalized Group has at least one child, and has exactly one child only
// when the combinator is NOT: negation of a single child means something
// different from the child itself, so NOT groups are never collapsed.
type Group struct {
	Combinator Combinator
	Children   []Node
}

func (*Group) filterNode() {}

// NewGroup builds a Group from the given children.
func NewGroup(c Combinator, children ...Node) *Group {
	return &Group{Combinator: c, Children: children}
}

// Equal reports structural equality with other, preserving child order.
func (g *Group) Equal(other Node) bool {
	o, ok := other.(*Group)
	if !ok {
		return false
	}
	if g == nil || o == nil {
		return g == o
	}
	if g.Combinator != o.Combinator || len(g.Children) != len(o.Children) {
		return false
	}
	for i, child := range g.Children {
		if child == nil || o.Children[i] == nil {
			if child != o.Children[i] {
				return false
			}
			continue
		}
		if !child.Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// FilterRequest is the top-level container handed to the query-translation
// layer. A nil Root means the request matches everything.
type FilterRequest struct {
	Root Node
}

// IsEmpty reports whether the request carries no filter at all.
func (r *FilterRequest) IsEmpty() bool {
	return r == nil || r.Root == nil
}

// Fields returns every field referenced anywhere in the tree, in first-visit
// order. A nil node yields nil.
func Fields(n Node) []string {
	var out []string
	seen := map[string]bool{}
	walkFields(n, func(field string) {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	})
	return out
}

// walkFields visits every predicate field in the subtree.
func walkFields(n Node, visit func(field string)) {
	switch node := n.(type) {
	case *Leaf:
		for _, p := range node.Predicates {
			visit(p.Field)
		}
	case *Group:
		for _, child := range node.Children {
			walkFields(child, visit)
		}
	}
}
