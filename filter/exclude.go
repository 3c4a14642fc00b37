package filter

// FieldSet is a set of field names to project away.
type FieldSet map[string]struct{}

// NewFieldSet builds a FieldSet from the given field names.
func NewFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Contains reports whether field is in the set.
func (s FieldSet) Contains(field string) bool {
	_, ok := s[field]
	return ok
}

// Exclude projects a tree onto the fields outside excluded, guaranteeing
// that the result matches a SUPERSET of the rows the original tree matches.
// The caller is expected to re-apply the untouched original filter at the
// point where all fields become available; until then the projection must
// never narrow.
//
// Per-node rules:
//
//   - Leaf: predicates whose field is excluded are dropped; an emptied leaf
//     becomes absent.
//   - AND group: every child is transformed independently and survivors are
//     re-normalized. Removing a conjunct only ever broadens the match.
//   - OR group: if ANY direct Leaf child references an excluded field the
//     whole group is dropped - partially stripping a disjunct would change
//     which rows satisfy it and can narrow the overall match. Otherwise
//     children (nested groups included) are transformed and survivors
//     re-normalized.
//   - NOT group: if any field at ANY depth inside the subtree is excluded
//     the whole group is dropped. By De Morgan, removing a conjunct inside
//     a negation shifts its extension in a direction that is not safe.
//     When no excluded field occurs inside, the group is returned unchanged
//     with no partial rewriting.
//
// Normalization (collapse-to-single-survivor, drop-if-empty) is applied at
// each level during the descent, so intermediate collapses are visible to
// parent-level logic. An empty or nil excluded set is the identity.
func Exclude(n Node, excluded FieldSet) Node {
	if len(excluded) == 0 {
		return n
	}
	switch node := n.(type) {
	case *Leaf:
		return excludeLeaf(node, excluded)
	case *Group:
		switch node.Combinator {
		case Or:
			return excludeOr(node, excluded)
		case Not:
			return excludeNot(node, excluded)
		default:
			return excludeAnd(node, excluded)
		}
	default:
		return nil
	}
}

// ExcludeRequest applies Exclude to a request root, returning nil when
// nothing survives.
func ExcludeRequest(r *FilterRequest, excluded FieldSet) *FilterRequest {
	if r.IsEmpty() {
		return nil
	}
	root := Exclude(r.Root, excluded)
	if root == nil {
		return nil
	}
	return &FilterRequest{Root: root}
}

func excludeLeaf(l *Leaf, excluded FieldSet) Node {
	kept := make([]Predicate, 0, len(l.Predicates))
	for _, p := range l.Predicates {
		if !excluded.Contains(p.Field) {
			kept = append(kept, p)
		}
	}
	switch {
	case len(kept) == 0:
		return nil
	case len(kept) == len(l.Predicates):
		return l
	default:
		return &Leaf{Predicates: kept}
	}
}

func excludeAnd(g *Group, excluded FieldSet) Node {
	return rebuildSurvivors(g, excluded)
}

func excludeOr(g *Group, excluded FieldSet) Node {
	for _, child := range g.Children {
		leaf, ok := child.(*Leaf)
		if !ok {
			continue
		}
		for _, p := range leaf.Predicates {
			if excluded.Contains(p.Field) {
				return nil
			}
		}
	}
	return rebuildSurvivors(g, excluded)
}

func excludeNot(g *Group, excluded FieldSet) Node {
	if referencesAny(g, excluded) {
		return nil
	}
	return g
}

// rebuildSurvivors transforms every child, drops the absent ones, and
// applies the collapse rules at this level.
func rebuildSurvivors(g *Group, excluded FieldSet) Node {
	survivors := make([]Node, 0, len(g.Children))
	for _, child := range g.Children {
		if transformed := Exclude(child, excluded); transformed != nil {
			survivors = append(survivors, transformed)
		}
	}
	switch {
	case len(survivors) == 0:
		return nil
	case len(survivors) == 1:
		return survivors[0]
	default:
		return &Group{Combinator: g.Combinator, Children: survivors}
	}
}

// referencesAny reports whether any field at any depth within the subtree
// is in the set.
func referencesAny(n Node, set FieldSet) bool {
	found := false
	walkFields(n, func(field string) {
		if set.Contains(field) {
			found = true
		}
	})
	return found
}
