package filter

// Normalize collapses a tree to its canonical minimal form.
//
// The function is total over any tree shape, including the degenerate ones
// that normalized trees never contain:
//
//   - nil stays nil
//   - a Leaf with no predicates becomes nil, any other Leaf is returned
//     unchanged
//   - a Group is rebuilt from the normalized children that survive; a Group
//     with no surviving children becomes nil, a Group with exactly one
//     surviving child and a combinator other than NOT becomes that child,
//     everything else keeps its combinator
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x). Every
// producer in this package (Builder, Decode, Exclude) routes constructed
// subtrees through this function instead of re-implementing flattening, so
// a given logical filter has exactly one canonical shape.
func Normalize(n Node) Node {
	switch node := n.(type) {
	case nil:
		return nil
	case *Leaf:
		if node == nil || len(node.Predicates) == 0 {
			return nil
		}
		return node
	case *Group:
		if node == nil {
			return nil
		}
		children := make([]Node, 0, len(node.Children))
		for _, child := range node.Children {
			if normalized := Normalize(child); normalized != nil {
				children = append(children, normalized)
			}
		}
		switch {
		case len(children) == 0:
			return nil
		case len(children) == 1 && node.Combinator != Not:
			return children[0]
		default:
			return &Group{Combinator: node.Combinator, Children: children}
		}
	default:
		// Unreachable: Node is sealed to this package.
		return nil
	}
}
