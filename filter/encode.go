package filter

import "encoding/json"

// Encode renders a tree to compact wire JSON. A nil node encodes as the
// empty body {} which decodes back to absence.
//
// Encoding is intentionally asymmetric with decoding and the asymmetry is
// documented behavior, not a defect:
//
//   - a Leaf emits only its filters map (no children, no combinator)
//   - a Group promotes its FIRST Leaf child to the node's own filters map;
//     every other child, later leaves included, is emitted under children,
//     and the combinator is emitted explicitly
//
// Decode(Encode(t)) yields a tree structurally equal to Normalize(t); that
// round-trip, not shape symmetry, is the contract. The one lossy shape is a
// list-operator predicate with zero values: empty values arrays are omitted
// on encode, and the re-decoded condition is dropped as value-less.
func Encode(n Node) ([]byte, error) {
	return json.Marshal(encodeNode(n))
}

// EncodeIndent is Encode with two-space indentation, for logs and fixtures.
func EncodeIndent(n Node) ([]byte, error) {
	return json.MarshalIndent(encodeNode(n), "", "  ")
}

// EncodeRequest renders a FilterRequest; empty requests encode as {}.
func EncodeRequest(r *FilterRequest) ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	return Encode(r.Root)
}

func encodeNode(n Node) wireNode {
	switch node := n.(type) {
	case *Leaf:
		return wireNode{Filters: encodeLeaf(node)}
	case *Group:
		w := wireNode{Combinator: string(node.Combinator)}
		leafTaken := false
		for _, child := range node.Children {
			if leaf, ok := child.(*Leaf); ok && !leafTaken {
				w.Filters = encodeLeaf(leaf)
				leafTaken = true
				continue
			}
			w.Children = append(w.Children, encodeNode(child))
		}
		return w
	default:
		return wireNode{}
	}
}

// encodeLeaf groups predicates by field, preserving first-appearance field
// order and per-field predicate order.
func encodeLeaf(l *Leaf) fieldMap {
	var m fieldMap
	index := map[string]int{}
	for _, p := range l.Predicates {
		cond := encodeCondition(p)
		if i, ok := index[p.Field]; ok {
			m[i].Conditions = append(m[i].Conditions, cond)
			continue
		}
		index[p.Field] = len(m)
		m = append(m, fieldEntry{Field: p.Field, Conditions: []wireCondition{cond}})
	}
	return m
}

// encodeCondition renders one predicate:
//
//   - IN/NOT_IN/BETWEEN carry values (omitted when empty)
//   - IS_NULL/IS_NOT_NULL carry neither value nor values
//   - everything else carries value set to the first element, absent when
//     the predicate is value-less
func encodeCondition(p Predicate) wireCondition {
	cond := wireCondition{Op: string(p.Operator)}
	switch {
	case p.Operator.TakesValueList():
		if len(p.Values) > 0 {
			values := append([]string(nil), p.Values...)
			cond.Values = &values
		}
	case p.Operator.Nullary():
		// No payload.
	default:
		if len(p.Values) > 0 {
			value := p.Values[0]
			cond.Value = &value
		}
	}
	return cond
}
