package relation

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/testutil"
)

var projectModel = StaticModel{ModelName: testutil.ProjectModel}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newProjects() *Relation {
	return New(projectModel, SliceSource(testutil.Projects()), quiet())
}

func mustIDs(t *testing.T, r *Relation) []int64 {
	t.Helper()
	records, err := r.Records()
	require.NoError(t, err)
	return testutil.IDs(t, records)
}

func str(s string) ir.IRValue { return ir.IRString(s) }

func num(n int64) ir.IRValue { return ir.IRInt(n) }
