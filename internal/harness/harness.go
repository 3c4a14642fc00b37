package harness

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/White-Wind-LLC/exposed-filters/filter"
	"github.com/White-Wind-LLC/exposed-filters/filtersql"
)

// Result holds the matched row ids for both trees, ascending.
type Result struct {
	// Original is the id set matched by the decoded filter.
	Original []int64

	// Excluded is the id set matched after field exclusion. A filter
	// that was excluded away entirely matches every row.
	Excluded []int64
}

// SupersetHolds reports the safe-projection guarantee: every row matched by
// the original tree is also matched by the excluded tree.
func (r *Result) SupersetHolds() bool {
	excluded := make(map[int64]bool, len(r.Excluded))
	for _, id := range r.Excluded {
		excluded[id] = true
	}
	for _, id := range r.Original {
		if !excluded[id] {
			return false
		}
	}
	return true
}

// Run executes a scenario against a fresh in-memory SQLite database.
func Run(s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := loadDataset(db, s); err != nil {
		return nil, err
	}

	req, err := filter.Decode([]byte(s.Filter))
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	excludedReq := filter.ExcludeRequest(req, filter.NewFieldSet(s.Exclude...))

	compiler := filtersql.NewCompiler(nil)

	original, err := matchedIDs(db, compiler, req)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: original filter: %w", s.Name, err)
	}
	excluded, err := matchedIDs(db, compiler, excludedReq)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: excluded filter: %w", s.Name, err)
	}

	return &Result{Original: original, Excluded: excluded}, nil
}

// loadDataset creates the scenario table and inserts the rows. Row ids are
// assigned from 1 in declaration order.
func loadDataset(db *sql.DB, s *Scenario) error {
	cols := make([]string, 0, len(s.Columns)+1)
	cols = append(cols, "id INTEGER PRIMARY KEY")
	for _, col := range s.Columns {
		cols = append(cols, quote(col)+" TEXT")
	}
	ddl := "CREATE TABLE dataset (" + strings.Join(cols, ", ") + ")"
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create dataset table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)+1), ", ")
	names := make([]string, 0, len(s.Columns)+1)
	names = append(names, "id")
	for _, col := range s.Columns {
		names = append(names, quote(col))
	}
	insert := "INSERT INTO dataset (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")"

	for i, row := range s.Rows {
		params := make([]any, 0, len(s.Columns)+1)
		params = append(params, int64(i+1))
		for _, col := range s.Columns {
			if v, ok := row[col]; ok && v != nil {
				params = append(params, *v)
			} else {
				params = append(params, nil)
			}
		}
		if _, err := db.Exec(insert, params...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return nil
}

// matchedIDs runs the compiled filter and collects matched ids ascending.
func matchedIDs(db *sql.DB, compiler *filtersql.Compiler, req *filter.FilterRequest) ([]int64, error) {
	where, params, err := compiler.CompileRequest(req)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT id FROM dataset WHERE "+where+" ORDER BY id ASC", params...)
	if err != nil {
		return nil, fmt.Errorf("execute filter: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
