package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireNode is the wire shape of both the request body and every nested node:
//
//	{ filters?: {field: [condition...]}, children?: [node...], combinator?: "AND"|"OR"|"NOT" }
//
// Every key is optional. Unknown keys are ignored by the standard decoder,
// which is exactly the lenient behavior the codec wants.
type wireNode struct {
	Filters    fieldMap   `json:"filters,omitempty"`
	Children   []wireNode `json:"children,omitempty"`
	Combinator string     `json:"combinator,omitempty"`
}

// wireCondition is one condition on the wire. Value and Values are pointers
// so the decoder can tell an absent key from an empty one: IN/NOT_IN/BETWEEN
// conditions with no values key at all are dropped, while an explicit empty
// values array is a legal, if semantically special, predicate.
type wireCondition struct {
	Op     string    `json:"op"`
	Value  *string   `json:"value,omitempty"`
	Values *[]string `json:"values,omitempty"`
}

// fieldEntry is one field with its ordered condition list.
type fieldEntry struct {
	Field      string
	Conditions []wireCondition
}

// fieldMap is the filters object. JSON objects lose key order in a Go map,
// but predicate order inside a Leaf is insertion order and feeds straight
// into round-trip determinism, so the map is decoded token by token into an
// ordered slice and encoded back in the same order.
type fieldMap []fieldEntry

func (m fieldMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		conds, err := json.Marshal(entry.Conditions)
		if err != nil {
			return nil, err
		}
		buf.Write(conds)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *fieldMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filters must be an object, got %v", tok)
	}

	var entries fieldMap
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		field, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid filters key: %v", keyTok)
		}
		var conditions []wireCondition
		if err := dec.Decode(&conditions); err != nil {
			return fmt.Errorf("conditions for field %q: %w", field, err)
		}
		entries = append(entries, fieldEntry{Field: field, Conditions: conditions})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}
