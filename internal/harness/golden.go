package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/store"
)

// Snapshot captures every query outcome of a scenario run.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Queries      []QueryResult `json:"queries"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() (map[string]any, error) {
	queries := make([]any, len(s.Queries))
	for i, q := range s.Queries {
		entry := map[string]any{
			"name":     q.Name,
			"relation": q.Relation,
		}
		if q.Records != nil {
			records := make([]any, len(q.Records))
			for j, rec := range q.Records {
				obj, err := recordObject(rec)
				if err != nil {
					return nil, fmt.Errorf("query %q: records[%d]: %w", q.Name, j, err)
				}
				records[j] = obj
			}
			entry["records"] = records
		}
		if q.Count != nil {
			entry["count"] = *q.Count
		}
		if q.Empty != nil {
			entry["empty"] = *q.Empty
		}
		if q.Found != nil {
			entry["found"] = *q.Found
		}
		if q.ErrorCode != "" {
			entry["error"] = q.ErrorCode
		}
		queries[i] = entry
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"queries":       queries,
	}, nil
}

func recordObject(rec ir.Record) (ir.IRObject, error) {
	switch r := rec.(type) {
	case ir.IRObject:
		return r, nil
	case store.Objecter:
		return r.Object(), nil
	default:
		return nil, fmt.Errorf("record type %T cannot be snapshotted", rec)
	}
}

// MarshalSnapshot renders a result as canonical JSON.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: scenarioName, Queries: result.Queries}
	canonicalMap, err := snapshot.toCanonicalMap()
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(canonicalMap)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
