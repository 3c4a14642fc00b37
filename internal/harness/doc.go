// Package harness runs YAML conformance scenarios for the filter algebra.
//
// A scenario describes a small dataset, a wire-JSON filter, and a set of
// fields to exclude. The harness loads the dataset into an in-memory SQLite
// database, compiles both the original tree and its field-excluded
// projection to SQL, executes both, and checks the safe-projection
// guarantee: the excluded tree must match a superset of the rows the
// original matches.
//
// Scenarios live in testdata/scenarios and double as executable
// documentation of the exclusion semantics.
package harness
