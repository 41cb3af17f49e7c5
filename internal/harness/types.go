package harness

import "github.com/roach88/relq/internal/ir"

// QueryResult is the observed outcome of one query.
type QueryResult struct {
	Name string `json:"name"`

	// Relation is the relation's String form after the chain ran.
	Relation string `json:"relation"`

	// Records holds the materialized records, or the single record returned
	// by first, last, find or find_by.
	Records []ir.Record `json:"records,omitempty"`

	Count *int  `json:"count,omitempty"`
	Empty *bool `json:"empty,omitempty"`
	Found *bool `json:"found,omitempty"`

	// ErrorCode is the relation error code, or "ERROR" for other failures.
	ErrorCode string `json:"error,omitempty"`
	Err       error  `json:"-"`

	// SQLRecords holds the SQLite result of a cross-checked query.
	SQLRecords []ir.Record `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Queries holds one entry per scenario query, in order.
	Queries []QueryResult `json:"queries"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryResult{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Query returns the result for the named query.
func (r *Result) Query(name string) (QueryResult, bool) {
	for _, q := range r.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return QueryResult{}, false
}
