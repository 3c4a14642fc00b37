package filter

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainTree is the domain prefix for content-addressed tree identity.
// The version suffix enables future algorithm migration.
const DomainTree = "exposed-filters/tree/v1"

// MarshalCanonical produces deterministic canonical JSON for a tree, for
// hashing and structural comparison. This is NOT the wire encoding; use
// Encode for that.
//
// Canonical form properties:
//  1. Fixed key order by construction (kind tag first, payload second)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized at the serialization boundary
//  4. A nil tree marshals as the empty object {}
//
// Two trees marshal identically iff they are structurally equal up to NFC
// string normalization.
func MarshalCanonical(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonicalNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TreeID computes the content-addressed identity of a tree:
// SHA256(domain + 0x00 + canonicalJSON), hex encoded. The null separator
// prevents domain/data boundary ambiguity. Stable across processes and
// restarts given a structurally equal tree.
func TreeID(n Node) (string, error) {
	canonical, err := MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("TreeID: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainTree))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeCanonicalNode(buf *bytes.Buffer, n Node) error {
	switch node := n.(type) {
	case nil:
		buf.WriteString("{}")
		return nil
	case *Leaf:
		buf.WriteString(`{"leaf":[`)
		for i, p := range node.Predicates {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalPredicate(buf, p); err != nil {
				return err
			}
		}
		buf.WriteString("]}")
		return nil
	case *Group:
		buf.WriteString(`{"group":`)
		if err := writeCanonicalString(buf, string(node.Combinator)); err != nil {
			return err
		}
		buf.WriteString(`,"children":[`)
		for i, child := range node.Children {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteString("]}")
		return nil
	default:
		return fmt.Errorf("unsupported node type: %T", n)
	}
}

func writeCanonicalPredicate(buf *bytes.Buffer, p Predicate) error {
	buf.WriteString(`{"field":`)
	if err := writeCanonicalString(buf, p.Field); err != nil {
		return err
	}
	buf.WriteString(`,"op":`)
	if err := writeCanonicalString(buf, string(p.Operator)); err != nil {
		return err
	}
	buf.WriteString(`,"values":[`)
	for i, v := range p.Values {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, v); err != nil {
			return err
		}
	}
	buf.WriteString("]}")
	return nil
}

// writeCanonicalString writes a JSON string with NFC normalization and HTML
// escaping disabled.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	// json.Encoder adds a trailing newline, remove it.
	out := tmp.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	buf.Write(out)
	return nil
}
