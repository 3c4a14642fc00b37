// Package filter provides the canonical boolean filter-tree algebra.
//
// User-supplied filtering criteria (field/operator/value conditions combined
// with AND, OR and NOT) are represented as an immutable tree of Leaf and
// Group nodes. The package owns four tightly coupled behaviors:
//
//   - Normalize: the single canonicalization pass every producer routes
//     constructed subtrees through, guaranteeing one minimal shape for a
//     given logical filter.
//   - Builder: a mutable accumulator DSL whose Build output is always
//     normalized.
//   - Wire codec: Decode/Encode between wire JSON and the tree. The encode
//     path is intentionally asymmetric (the first Leaf child of a Group is
//     promoted to the node's own filters map) and round-trips are verified
//     by tests rather than made symmetric.
//   - Exclude: a safe projection that removes predicates for a set of
//     fields without ever narrowing the match set.
//
// The package does not validate field names against any schema and does not
// translate trees into backend predicates; see package filtersql for a SQL
// translation of normalized trees.
//
// Completed Node and FilterRequest values are immutable and safe for
// concurrent reads. A Builder instance is a single-writer accumulator and
// must not be mutated from multiple goroutines.
package filter
