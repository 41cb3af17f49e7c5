package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relq/internal/dataset"
	"github.com/roach88/relq/internal/relation"
)

// Scenario defines a query test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the path of a dataset file, relative to the scenario file.
	// Exactly one of Dataset and Collection must be set.
	Dataset string `yaml:"dataset,omitempty"`

	// Collection is an inline dataset.
	Collection *dataset.Dataset `yaml:"collection,omitempty"`

	// Queries run in order against the same collection.
	Queries []Query `yaml:"queries"`
}

// Query is one relation chain plus its terminal operation.
type Query struct {
	Name string `yaml:"name"`

	// Chain is applied to the collection's default relation in order.
	Chain []Step `yaml:"chain,omitempty"`

	// Terminal is records (default), first, last, count, empty, find or
	// find_by.
	Terminal string `yaml:"terminal,omitempty"`

	// Args are the arguments of find (the id) and find_by (a mapping).
	Args []any `yaml:"args,omitempty"`

	// CrossCheck also evaluates the chain in SQLite and requires the same
	// records. Only meaningful for the records terminal.
	CrossCheck bool `yaml:"cross_check,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Step is one builder call. Exactly one field must be set.
type Step struct {
	Where    dataset.Fields    `yaml:"where,omitempty"`
	WhereNot dataset.Fields    `yaml:"where_not,omitempty"`
	Order    dataset.OrderSpec `yaml:"order,omitempty"`
	Offset   *int              `yaml:"offset,omitempty"`
	Limit    *int              `yaml:"limit,omitempty"`
	Except   []string          `yaml:"except,omitempty"`
	Only     []string          `yaml:"only,omitempty"`
	All      bool              `yaml:"all,omitempty"`

	// Scope calls a named scope with Args.
	Scope string `yaml:"scope,omitempty"`
	Args  []any  `yaml:"args,omitempty"`
}

// Expect is the expected outcome of a query. Unset fields are not checked.
type Expect struct {
	// IDs are the expected primary keys, in order.
	IDs []any `yaml:"ids,omitempty"`

	// Count is the expected count (count terminal) or number of records.
	Count *int `yaml:"count,omitempty"`

	// Empty is the expected result of the empty terminal.
	Empty *bool `yaml:"empty,omitempty"`

	// Found is whether first, last or find_by returned a record.
	Found *bool `yaml:"found,omitempty"`

	// Error is the expected relation error code, e.g. RECORD_NOT_FOUND.
	Error string `yaml:"error,omitempty"`
}

// Terminal operation names.
const (
	TerminalRecords = "records"
	TerminalFirst   = "first"
	TerminalLast    = "last"
	TerminalCount   = "count"
	TerminalEmpty   = "empty"
	TerminalFind    = "find"
	TerminalFindBy  = "find_by"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A dataset path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Dataset != "" && !filepath.IsAbs(scenario.Dataset) {
		scenario.Dataset = filepath.Join(filepath.Dir(path), scenario.Dataset)
	}
	if scenario.Dataset != "" {
		if _, err := os.Stat(scenario.Dataset); err != nil {
			return nil, fmt.Errorf("invalid scenario: dataset file not found: %s", scenario.Dataset)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "querys:" vs "queries:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Dataset == "" && s.Collection == nil:
		return fmt.Errorf("one of dataset or collection is required")
	case s.Dataset != "" && s.Collection != nil:
		return fmt.Errorf("dataset and collection are mutually exclusive")
	case s.Collection != nil:
		if err := s.Collection.Validate(); err != nil {
			return fmt.Errorf("collection: %w", err)
		}
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if err := validateQuery(i, &q); err != nil {
			return err
		}
		if seen[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		seen[q.Name] = true
	}

	return nil
}

// validateQuery validates a single query and its chain.
func validateQuery(index int, q *Query) error {
	if q.Name == "" {
		return fmt.Errorf("queries[%d]: name is required", index)
	}

	for j, step := range q.Chain {
		if n := step.setCount(); n != 1 {
			return fmt.Errorf("queries[%d].chain[%d]: exactly one operation must be set, found %d", index, j, n)
		}
		if len(step.Args) > 0 && step.Scope == "" {
			return fmt.Errorf("queries[%d].chain[%d]: args are only valid with scope", index, j)
		}
		for _, name := range append(append([]string{}, step.Except...), step.Only...) {
			if _, err := relation.ParseClause(name); err != nil {
				return fmt.Errorf("queries[%d].chain[%d]: %w", index, j, err)
			}
		}
	}

	switch q.terminal() {
	case TerminalRecords, TerminalFirst, TerminalLast, TerminalCount, TerminalEmpty:
		if len(q.Args) > 0 {
			return fmt.Errorf("queries[%d]: %s takes no args", index, q.terminal())
		}
	case TerminalFind:
		if len(q.Args) != 1 {
			return fmt.Errorf("queries[%d]: find takes exactly one arg (the id)", index)
		}
	case TerminalFindBy:
		if len(q.Args) != 1 {
			return fmt.Errorf("queries[%d]: find_by takes exactly one arg (a mapping)", index)
		}
		if _, ok := q.Args[0].(map[string]any); !ok {
			return fmt.Errorf("queries[%d]: find_by arg must be a mapping", index)
		}
	default:
		return fmt.Errorf("queries[%d]: unknown terminal %q", index, q.Terminal)
	}

	if q.CrossCheck && q.terminal() != TerminalRecords {
		return fmt.Errorf("queries[%d]: cross_check requires the records terminal", index)
	}

	return nil
}

func (q Query) terminal() string {
	if q.Terminal == "" {
		return TerminalRecords
	}
	return q.Terminal
}

// setCount reports how many operations a step sets.
func (s Step) setCount() int {
	n := 0
	for _, set := range []bool{
		s.Where != nil,
		s.WhereNot != nil,
		s.Order != nil,
		s.Offset != nil,
		s.Limit != nil,
		s.Except != nil,
		s.Only != nil,
		s.All,
		s.Scope != "",
	} {
		if set {
			n++
		}
	}
	return n
}
