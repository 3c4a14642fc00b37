package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Columns lists the dataset columns. Every column is TEXT and
	// nullable; an implicit "id" INTEGER PRIMARY KEY is added by the
	// harness, numbered from 1 in row order.
	Columns []string `yaml:"columns"`

	// Rows holds the dataset. Missing or null values load as SQL NULL.
	Rows []map[string]*string `yaml:"rows"`

	// Filter is the wire-JSON filter request body.
	Filter string `yaml:"filter"`

	// Exclude lists the fields to project away.
	Exclude []string `yaml:"exclude,omitempty"`

	// Expect optionally pins the exact matched row ids. The superset
	// guarantee is always checked regardless.
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation pins expected matched row ids, ascending.
type Expectation struct {
	Original []int64 `yaml:"original"`
	Excluded []int64 `yaml:"excluded"`
}

// Validate checks the scenario is well formed before running it.
func (s *Scenario) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("scenario %q: at least one column is required", s.Name)
	}
	seen := map[string]bool{}
	for _, col := range s.Columns {
		if col == "id" {
			return fmt.Errorf("scenario %q: column id is reserved", s.Name)
		}
		if seen[col] {
			return fmt.Errorf("scenario %q: duplicate column %q", s.Name, col)
		}
		seen[col] = true
	}
	for i, row := range s.Rows {
		for col := range row {
			if !seen[col] {
				return fmt.Errorf("scenario %q: row %d references unknown column %q", s.Name, i, col)
			}
		}
	}
	if strings.TrimSpace(s.Filter) == "" {
		return fmt.Errorf("scenario %q: filter is required", s.Name)
	}
	return nil
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario in dir, sorted by file name for
// deterministic test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
