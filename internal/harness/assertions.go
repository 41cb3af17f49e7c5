package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/relq/internal/ir"
)

// AssertionError describes one expectation that did not hold.
type AssertionError struct {
	Query    string
	Field    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("query %q: %s: expected %s, got %s", e.Query, e.Field, e.Expected, e.Actual)
}

// checkExpect compares a query outcome against its expectation.
// Every mismatch is reported, not just the first.
func checkExpect(q Query, got QueryResult, primaryKey string) []error {
	var errs []error
	fail := func(field, expected, actual string) {
		errs = append(errs, &AssertionError{Query: q.Name, Field: field, Expected: expected, Actual: actual})
	}
	want := q.Expect

	// An unexpected error makes every other comparison meaningless.
	if want.Error == "" && got.ErrorCode != "" {
		fail("error", "no error", errorText(got))
		return errs
	}
	if want.Error != "" {
		if got.ErrorCode != want.Error {
			fail("error", want.Error, orNone(got.ErrorCode))
		}
		return errs
	}

	if want.IDs != nil {
		expected, err := expectedIDs(want.IDs)
		if err != nil {
			fail("ids", "valid ids", err.Error())
		} else {
			actual, err := recordIDs(got.Records, primaryKey)
			if err != nil {
				fail("ids", formatValues(expected), err.Error())
			} else if !equalValues(expected, actual) {
				fail("ids", formatValues(expected), formatValues(actual))
			}
		}
	}

	if want.Count != nil {
		n := len(got.Records)
		if got.Count != nil {
			n = *got.Count
		}
		if n != *want.Count {
			fail("count", fmt.Sprint(*want.Count), fmt.Sprint(n))
		}
	}

	if want.Empty != nil {
		if got.Empty == nil {
			fail("empty", fmt.Sprint(*want.Empty), "not evaluated (terminal is "+q.terminal()+")")
		} else if *got.Empty != *want.Empty {
			fail("empty", fmt.Sprint(*want.Empty), fmt.Sprint(*got.Empty))
		}
	}

	if want.Found != nil {
		if got.Found == nil {
			fail("found", fmt.Sprint(*want.Found), "not evaluated (terminal is "+q.terminal()+")")
		} else if *got.Found != *want.Found {
			fail("found", fmt.Sprint(*want.Found), fmt.Sprint(*got.Found))
		}
	}

	if q.CrossCheck {
		if err := crossCheck(got, primaryKey); err != nil {
			fail("cross_check", "in-memory and SQLite agree", err.Error())
		}
	}

	return errs
}

func crossCheck(got QueryResult, primaryKey string) error {
	mem, err := recordIDs(got.Records, primaryKey)
	if err != nil {
		return err
	}
	sql, err := recordIDs(got.SQLRecords, primaryKey)
	if err != nil {
		return err
	}
	if !equalValues(mem, sql) {
		return fmt.Errorf("memory %s, sqlite %s", formatValues(mem), formatValues(sql))
	}
	return nil
}

func expectedIDs(raw []any) ([]ir.IRValue, error) {
	out := make([]ir.IRValue, len(raw))
	for i, v := range raw {
		iv, err := ir.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("ids[%d]: %w", i, err)
		}
		out[i] = iv
	}
	return out, nil
}

func recordIDs(records []ir.Record, primaryKey string) ([]ir.IRValue, error) {
	out := make([]ir.IRValue, len(records))
	for i, rec := range records {
		v, err := ir.Get(rec, primaryKey)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func equalValues(a, b []ir.IRValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ir.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func formatValues(vals []ir.IRValue) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = ir.Format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func errorText(got QueryResult) string {
	if got.Err != nil {
		return got.Err.Error()
	}
	return got.ErrorCode
}

func orNone(s string) string {
	if s == "" {
		return "no error"
	}
	return s
}
