// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/ir"
)

// ProjectModel is the model name of the Project fixture.
const ProjectModel = "Project"

// Project builds one Project record.
func Project(id int64, state string, priority int64) ir.IRObject {
	return ir.IRObject{
		"id":       ir.IRInt(id),
		"state":    ir.IRString(state),
		"priority": ir.IRInt(priority),
	}
}

// Projects returns a fresh copy of the four-record Project fixture:
//
//	id  state      priority
//	1   draft      1
//	2   running    2
//	3   completed  3
//	4   completed  1
func Projects() []ir.Record {
	return []ir.Record{
		Project(1, "draft", 1),
		Project(2, "running", 2),
		Project(3, "completed", 3),
		Project(4, "completed", 1),
	}
}

// IDs extracts the integer "id" attribute of each record.
func IDs(tb testing.TB, records []ir.Record) []int64 {
	tb.Helper()
	out := make([]int64, 0, len(records))
	for _, rec := range records {
		out = append(out, ID(tb, rec))
	}
	return out
}

// ID extracts the integer "id" attribute of one record.
func ID(tb testing.TB, rec ir.Record) int64 {
	tb.Helper()
	v, err := ir.Get(rec, "id")
	require.NoError(tb, err)
	n, ok := v.(ir.IRInt)
	require.True(tb, ok, "id is %s, not int", ir.KindOf(v))
	return int64(n)
}
