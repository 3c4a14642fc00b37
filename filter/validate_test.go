package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWireAccepts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"blank", "   "},
		{"empty body", `{}`},
		{"simple leaf", `{"filters": {"status": [{"op":"EQ","value":"ACTIVE"}]}}`},
		{"empty values", `{"filters": {"age": [{"op":"IN","values":[]}]}}`},
		{"nullary", `{"filters": {"deleted_at": [{"op":"IS_NULL"}]}}`},
		{
			"nested",
			`{"combinator":"OR","filters":{"a":[{"op":"EQ","value":"1"}]},"children":[{"filters":{"b":[{"op":"EQ","value":"2"}]}}]}`,
		},
		{"combinator only", `{"combinator":"NOT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateWire([]byte(tt.raw)))
		})
	}
}

func TestValidateWireRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"filters":`},
		{"array body", `[]`},
		{"unknown operator", `{"filters": {"a": [{"op":"LIKE","value":"x"}]}}`},
		{"unknown combinator", `{"combinator":"XOR"}`},
		{"missing op", `{"filters": {"a": [{"value":"x"}]}}`},
		{"numeric value", `{"filters": {"a": [{"op":"EQ","value":1}]}}`},
		{"numeric values entry", `{"filters": {"a": [{"op":"IN","values":[1]}]}}`},
		{"unknown condition key", `{"filters": {"a": [{"op":"EQ","value":"1","hint":"x"}]}}`},
		{"unknown body key", `{"filters": {"a": [{"op":"EQ","value":"1"}]}, "page": 3}`},
		{"non-array conditions", `{"filters": {"a": {"op":"EQ"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWire([]byte(tt.raw))
			require.Error(t, err)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestValidateWireStricterThanDecode(t *testing.T) {
	// The lenient decoder drops the unknown operator and ignores the extra
	// key; the grammar rejects both outright.
	raw := `{"filters": {"a": [{"op":"LIKE","value":"x"}]}, "page": 3}`

	req, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.Nil(t, req)

	assert.Error(t, ValidateWire([]byte(raw)))
}
