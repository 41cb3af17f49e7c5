// Package harness runs YAML query scenarios against a dataset.
//
// A scenario names a dataset (a file path, or an inline collection), then
// lists queries. Each query is a chain of relation steps followed by a
// terminal operation and an expectation:
//
//	name: project_basics
//	description: filters, negation and ordering over the Project fixture
//	dataset: ../../../dataset/testdata/projects.yaml
//	queries:
//	  - name: completed
//	    chain:
//	      - where: {state: completed}
//	    expect:
//	      ids: [3, 4]
//	  - name: missing
//	    terminal: find
//	    args: [-1]
//	    expect:
//	      error: RECORD_NOT_FOUND
//
// Queries marked cross_check are also evaluated by SQLite through package
// store, and the two results must agree.
//
// Golden files capture the canonical JSON of every query's outcome, so a
// change in ordering or filtering shows up as a diff:
//
//	go test ./internal/harness -update
package harness
