// Package filtersql compiles normalized filter trees to parameterized SQL
// WHERE fragments for SQLite.
//
// This package is the query-translation collaborator of the filter algebra:
// it alone resolves field names to column references and decides the
// semantics the algebra deliberately leaves open (empty IN lists,
// value-less predicates). Values are NEVER interpolated into the SQL text;
// every fragment uses ? placeholders.
package filtersql

import (
	"fmt"
	"strings"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

// UnknownFieldError indicates a filter references a field with no column
// mapping.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown filter field %q", e.Field)
}

// Compiler compiles filter trees to SQL fragments.
type Compiler struct {
	// Columns maps filter field names to column references. When nil,
	// field names are used directly (quoted as identifiers). When
	// non-nil, fields without a mapping are rejected - the translation
	// layer, not the algebra, owns field validation.
	Columns map[string]string
}

// NewCompiler creates a Compiler with the given field-to-column mapping.
// A nil mapping compiles field names as-is.
func NewCompiler(columns map[string]string) *Compiler {
	return &Compiler{Columns: columns}
}

// CompileRequest compiles a request root. Empty requests compile to the
// always-true fragment so callers can splice the result into a WHERE clause
// unconditionally.
func (c *Compiler) CompileRequest(r *filter.FilterRequest) (string, []any, error) {
	if r.IsEmpty() {
		return "1 = 1", nil, nil
	}
	return c.Compile(r.Root)
}

// Compile converts a tree to an SQL condition fragment and its parameters.
// A nil node compiles to the always-true fragment.
func (c *Compiler) Compile(n filter.Node) (string, []any, error) {
	if n == nil {
		return "1 = 1", nil, nil
	}
	return c.compileNode(n)
}

func (c *Compiler) compileNode(n filter.Node) (string, []any, error) {
	switch node := n.(type) {
	case *filter.Leaf:
		return c.compileLeaf(node)
	case *filter.Group:
		return c.compileGroup(node)
	default:
		return "", nil, fmt.Errorf("unsupported node type: %T", n)
	}
}

// compileLeaf conjoins the leaf's predicates.
func (c *Compiler) compileLeaf(l *filter.Leaf) (string, []any, error) {
	if len(l.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var parts []string
	var params []any
	for _, p := range l.Predicates {
		sql, predParams, err := c.compilePredicate(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return joinParts(parts, " AND "), params, nil
}

// compileGroup combines compiled children. A NOT group negates the
// conjunction of its children: NOT ((a) AND (b)).
func (c *Compiler) compileGroup(g *filter.Group) (string, []any, error) {
	var parts []string
	var params []any
	for _, child := range g.Children {
		sql, childParams, err := c.compileNode(child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, childParams...)
	}
	if len(parts) == 0 {
		return "1 = 1", nil, nil
	}

	switch g.Combinator {
	case filter.Or:
		return joinParts(parts, " OR "), params, nil
	case filter.Not:
		return "NOT (" + joinParts(parts, " AND ") + ")", params, nil
	default:
		return joinParts(parts, " AND "), params, nil
	}
}

func joinParts(parts []string, sep string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ")"+sep+"(") + ")"
}

// compilePredicate compiles one predicate to "col OP ?" form.
func (c *Compiler) compilePredicate(p filter.Predicate) (string, []any, error) {
	col, err := c.column(p.Field)
	if err != nil {
		return "", nil, err
	}

	switch p.Operator {
	case filter.OpEq:
		return c.binary(col, "=", p)
	case filter.OpNeq:
		return c.binary(col, "<>", p)
	case filter.OpGt:
		return c.binary(col, ">", p)
	case filter.OpGte:
		return c.binary(col, ">=", p)
	case filter.OpLt:
		return c.binary(col, "<", p)
	case filter.OpLte:
		return c.binary(col, "<=", p)
	case filter.OpContains:
		return c.like(col, p, "%", "%")
	case filter.OpStartsWith:
		return c.like(col, p, "", "%")
	case filter.OpEndsWith:
		return c.like(col, p, "%", "")
	case filter.OpIn:
		return c.inList(col, p, false)
	case filter.OpNotIn:
		return c.inList(col, p, true)
	case filter.OpBetween:
		if len(p.Values) != 2 {
			return "", nil, fmt.Errorf("operator BETWEEN on field %q requires exactly 2 values, got %d", p.Field, len(p.Values))
		}
		return col + " BETWEEN ? AND ?", []any{p.Values[0], p.Values[1]}, nil
	case filter.OpIsNull:
		return col + " IS NULL", nil, nil
	case filter.OpIsNotNull:
		return col + " IS NOT NULL", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %q on field %q", p.Operator, p.Field)
	}
}

// binary compiles a single-value comparison. Value-less predicates are an
// error here: the algebra carries them through, the translation layer
// rejects them.
func (c *Compiler) binary(col, op string, p filter.Predicate) (string, []any, error) {
	if len(p.Values) == 0 {
		return "", nil, fmt.Errorf("operator %s on field %q requires a value", p.Operator, p.Field)
	}
	return col + " " + op + " ?", []any{p.Values[0]}, nil
}

// like compiles substring/prefix/suffix matches. LIKE metacharacters in the
// value are escaped so user input always matches literally.
func (c *Compiler) like(col string, p filter.Predicate, prefix, suffix string) (string, []any, error) {
	if len(p.Values) == 0 {
		return "", nil, fmt.Errorf("operator %s on field %q requires a value", p.Operator, p.Field)
	}
	pattern := prefix + escapeLike(p.Values[0]) + suffix
	return col + ` LIKE ? ESCAPE '\'`, []any{pattern}, nil
}

// inList compiles set membership. The algebra passes empty value lists
// through unchanged; here they get their concrete meaning: IN () matches
// nothing, NOT IN () matches everything.
func (c *Compiler) inList(col string, p filter.Predicate, negated bool) (string, []any, error) {
	if len(p.Values) == 0 {
		if negated {
			return "1 = 1", nil, nil
		}
		return "1 = 0", nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(p.Values)), ", ")
	params := make([]any, len(p.Values))
	for i, v := range p.Values {
		params[i] = v
	}
	op := "IN"
	if negated {
		op = "NOT IN"
	}
	return col + " " + op + " (" + placeholders + ")", params, nil
}

// column resolves a filter field to a column reference.
func (c *Compiler) column(field string) (string, error) {
	if field == "" {
		return "", &UnknownFieldError{Field: field}
	}
	if c.Columns == nil {
		return quoteIdentifier(field), nil
	}
	col, ok := c.Columns[field]
	if !ok {
		return "", &UnknownFieldError{Field: field}
	}
	return col, nil
}

// escapeLike escapes LIKE metacharacters with backslash, matching the
// ESCAPE '\' clause emitted by like.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// quoteIdentifier quotes a column identifier when it is not a plain
// lower-risk name. SQLite uses double quotes for identifiers.
func quoteIdentifier(name string) string {
	if plainIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func plainIdentifier(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !reservedWord(name)
}

func reservedWord(name string) bool {
	switch strings.ToUpper(name) {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"IN", "IS", "LIKE", "BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE",
		"END", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET", "JOIN", "ON",
		"AS", "ASC", "DESC", "INDEX", "TABLE", "TO", "SET", "VALUES", "DEFAULT":
		return true
	}
	return false
}
