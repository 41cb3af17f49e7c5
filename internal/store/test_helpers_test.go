package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/relq/internal/collection"
	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/testutil"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestProjects returns the Project fixture as a collection.
func createTestProjects(records ...ir.Record) *collection.Collection {
	if len(records) == 0 {
		records = testutil.Projects()
	}
	return collection.New(testutil.ProjectModel,
		collection.WithRecords(records),
		collection.WithLogger(quietLogger()))
}
