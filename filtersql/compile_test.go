package filtersql

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/White-Wind-LLC/exposed-filters/filter"
)

func pred(field string, op filter.Operator, values ...string) filter.Predicate {
	return filter.Predicate{Field: field, Operator: op, Values: values}
}

func TestCompilePredicates(t *testing.T) {
	tests := []struct {
		name   string
		input  filter.Predicate
		sql    string
		params []any
	}{
		{"eq", pred("status", filter.OpEq, "ACTIVE"), "status = ?", []any{"ACTIVE"}},
		{"neq", pred("status", filter.OpNeq, "DELETED"), "status <> ?", []any{"DELETED"}},
		{"gt", pred("age", filter.OpGt, "18"), "age > ?", []any{"18"}},
		{"gte", pred("age", filter.OpGte, "18"), "age >= ?", []any{"18"}},
		{"lt", pred("age", filter.OpLt, "65"), "age < ?", []any{"65"}},
		{"lte", pred("age", filter.OpLte, "65"), "age <= ?", []any{"65"}},
		{"contains", pred("name", filter.OpContains, "an"), `name LIKE ? ESCAPE '\'`, []any{"%an%"}},
		{"starts with", pred("name", filter.OpStartsWith, "D"), `name LIKE ? ESCAPE '\'`, []any{"D%"}},
		{"ends with", pred("name", filter.OpEndsWith, "o"), `name LIKE ? ESCAPE '\'`, []any{"%o"}},
		{"in", pred("kind", filter.OpIn, "A", "B"), "kind IN (?, ?)", []any{"A", "B"}},
		{"not in", pred("kind", filter.OpNotIn, "A"), "kind NOT IN (?)", []any{"A"}},
		{"between", pred("age", filter.OpBetween, "18", "65"), "age BETWEEN ? AND ?", []any{"18", "65"}},
		{"is null", pred("deleted_at", filter.OpIsNull), "deleted_at IS NULL", nil},
		{"is not null", pred("deleted_at", filter.OpIsNotNull), "deleted_at IS NOT NULL", nil},
		{"empty in matches nothing", pred("kind", filter.OpIn), "1 = 0", nil},
		{"empty not in matches everything", pred("kind", filter.OpNotIn), "1 = 1", nil},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, params, err := c.Compile(filter.NewLeaf(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.sql, frag)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input filter.Predicate
	}{
		{"value-less eq", pred("a", filter.OpEq)},
		{"value-less contains", pred("a", filter.OpContains)},
		{"between wrong arity", pred("a", filter.OpBetween, "1")},
		{"between too many", pred("a", filter.OpBetween, "1", "2", "3")},
		{"empty field", pred("", filter.OpEq, "1")},
	}

	c := NewCompiler(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.Compile(filter.NewLeaf(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestCompileLikeEscaping(t *testing.T) {
	c := NewCompiler(nil)
	frag, params, err := c.Compile(filter.NewLeaf(pred("name", filter.OpContains, `50%_a\b`)))
	require.NoError(t, err)
	assert.Equal(t, `name LIKE ? ESCAPE '\'`, frag)
	assert.Equal(t, []any{`%50\%\_a\\b%`}, params)
}

func TestCompileGroups(t *testing.T) {
	a := filter.NewLeaf(pred("a", filter.OpEq, "1"))
	b := filter.NewLeaf(pred("b", filter.OpEq, "2"))
	c := NewCompiler(nil)

	tests := []struct {
		name   string
		input  filter.Node
		sql    string
		params []any
	}{
		{
			"leaf conjunction",
			filter.NewLeaf(pred("a", filter.OpEq, "1"), pred("b", filter.OpGt, "2")),
			"(a = ?) AND (b > ?)",
			[]any{"1", "2"},
		},
		{"and", filter.NewGroup(filter.And, a, b), "(a = ?) AND (b = ?)", []any{"1", "2"}},
		{"or", filter.NewGroup(filter.Or, a, b), "(a = ?) OR (b = ?)", []any{"1", "2"}},
		{"not single child", filter.NewGroup(filter.Not, a), "NOT (a = ?)", []any{"1"}},
		{
			"not multiple children",
			filter.NewGroup(filter.Not, a, b),
			"NOT ((a = ?) AND (b = ?))",
			[]any{"1", "2"},
		},
		{
			"nested",
			filter.NewGroup(filter.And, a, filter.NewGroup(filter.Or, b, filter.NewGroup(filter.Not, a))),
			"(a = ?) AND ((b = ?) OR (NOT (a = ?)))",
			[]any{"1", "2", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, params, err := c.Compile(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, frag)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompileColumnMapping(t *testing.T) {
	c := NewCompiler(map[string]string{
		"status": "u.status",
		"name":   "u.full_name",
	})

	frag, params, err := c.Compile(filter.NewLeaf(pred("status", filter.OpEq, "ACTIVE")))
	require.NoError(t, err)
	assert.Equal(t, "u.status = ?", frag)
	assert.Equal(t, []any{"ACTIVE"}, params)

	_, _, err = c.Compile(filter.NewLeaf(pred("unmapped", filter.OpEq, "x")))
	require.Error(t, err)
	var unknownErr *UnknownFieldError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unmapped", unknownErr.Field)
}

func TestCompileIdentifierQuoting(t *testing.T) {
	c := NewCompiler(nil)

	tests := []struct {
		field string
		sql   string
	}{
		{"status", "status = ?"},
		{"full_name", "full_name = ?"},
		{"order", `"order" = ?`},
		{"select", `"select" = ?`},
		{"weird-field", `"weird-field" = ?`},
		{"1starts_with_digit", `"1starts_with_digit" = ?`},
		{`has"quote`, `"has""quote" = ?`},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			frag, _, err := c.Compile(filter.NewLeaf(pred(tt.field, filter.OpEq, "x")))
			require.NoError(t, err)
			assert.Equal(t, tt.sql, frag)
		})
	}
}

func TestCompileRequest(t *testing.T) {
	c := NewCompiler(nil)

	frag, params, err := c.CompileRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", frag)
	assert.Nil(t, params)

	frag, params, err = c.CompileRequest(&filter.FilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", frag)
	assert.Nil(t, params)

	req := &filter.FilterRequest{Root: filter.NewLeaf(pred("a", filter.OpEq, "1"))}
	frag, params, err = c.CompileRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "a = ?", frag)
	assert.Equal(t, []any{"1"}, params)
}

func TestCompiledFragmentsRunOnSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, status TEXT, age TEXT, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, status, age, name) VALUES
		(1, 'ACTIVE',  '25', 'Dana'),
		(2, 'ACTIVE',  '17', 'Milo'),
		(3, 'DELETED', '40', 'Ines')`)
	require.NoError(t, err)

	tree := filter.NewGroup(filter.And,
		filter.NewLeaf(pred("status", filter.OpEq, "ACTIVE")),
		filter.NewGroup(filter.Not, filter.NewLeaf(pred("age", filter.OpLt, "18"))),
	)

	where, params, err := NewCompiler(nil).Compile(tree)
	require.NoError(t, err)

	rows, err := db.Query("SELECT id FROM users WHERE "+where+" ORDER BY id", params...)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1}, ids)
}
