package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    Node
		expected string
	}{
		{"nil tree", nil, `{}`},
		{
			"leaf",
			NewLeaf(Predicate{Field: "status", Operator: OpEq, Values: []string{"ACTIVE"}}),
			`{"leaf":[{"field":"status","op":"EQ","values":["ACTIVE"]}]}`,
		},
		{
			"leaf without values",
			NewLeaf(Predicate{Field: "deleted_at", Operator: OpIsNull}),
			`{"leaf":[{"field":"deleted_at","op":"IS_NULL","values":[]}]}`,
		},
		{
			"group",
			NewGroup(Or,
				NewLeaf(predEq("a", "1")),
				NewLeaf(predEq("b", "2")),
			),
			`{"group":"OR","children":[{"leaf":[{"field":"a","op":"EQ","values":["1"]}]},{"leaf":[{"field":"b","op":"EQ","values":["2"]}]}]}`,
		},
		{
			"nested NOT",
			NewGroup(Not, NewLeaf(predEq("x", "0"))),
			`{"group":"NOT","children":[{"leaf":[{"field":"x","op":"EQ","values":["0"]}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	leaf := NewLeaf(Predicate{Field: "note", Operator: OpContains, Values: []string{"<a&b>"}})
	result, err := MarshalCanonical(leaf)
	require.NoError(t, err)
	assert.Contains(t, string(result), `"<a&b>"`)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "é" as a precomposed code point vs "e" + combining acute accent.
	precomposed := NewLeaf(Predicate{Field: "name", Operator: OpEq, Values: []string{"café"}})
	decomposed := NewLeaf(Predicate{Field: "name", Operator: OpEq, Values: []string{"café"}})

	a, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "canonically equivalent strings marshal identically")
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	tree := NewGroup(And,
		NewLeaf(
			Predicate{Field: "status", Operator: OpEq, Values: []string{"ACTIVE"}},
			Predicate{Field: "age", Operator: OpBetween, Values: []string{"18", "65"}},
		),
		NewGroup(Not, NewLeaf(predEq("city", "Kyiv"))),
	)

	first, err := MarshalCanonical(tree)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(tree)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestTreeID(t *testing.T) {
	tree := NewLeaf(predEq("a", "1"))

	id, err := TreeID(tree)
	require.NoError(t, err)
	assert.Len(t, id, 64, "hex-encoded SHA-256")

	again, err := TreeID(tree)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	other, err := TreeID(NewLeaf(predEq("a", "2")))
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestTreeIDStructuralEquality(t *testing.T) {
	a := NewGroup(Or, NewLeaf(predEq("x", "1")), NewLeaf(predEq("y", "2")))
	b := NewGroup(Or, NewLeaf(predEq("x", "1")), NewLeaf(predEq("y", "2")))

	idA, err := TreeID(a)
	require.NoError(t, err)
	idB, err := TreeID(b)
	require.NoError(t, err)
	assert.Equal(t, idA, idB, "distinct allocations of equal trees share an identity")

	flipped, err := TreeID(NewGroup(Or, NewLeaf(predEq("y", "2")), NewLeaf(predEq("x", "1"))))
	require.NoError(t, err)
	assert.NotEqual(t, idA, flipped, "child order is part of the identity")
}

func TestTreeIDNil(t *testing.T) {
	id, err := TreeID(nil)
	require.NoError(t, err)
	assert.Len(t, id, 64)
}
