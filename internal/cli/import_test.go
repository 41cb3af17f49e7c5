package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importProjects(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "projects.db")
	stdout, _, err := execute(t, "import", "--db", db, projectsDataset)
	require.NoError(t, err)
	assert.Equal(t, "imported Project (4 records) from "+projectsDataset+"\n", stdout)
	return db
}

func TestImport_ThenQuerySQL(t *testing.T) {
	db := importProjects(t)

	stdout, _, err := execute(t, "query", "--format", "json", "--db", db, "--collection", "Project",
		"--where", "state=completed", "--order", "id:desc", "--sql")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3}, objectIDs(t, decodeQuery(t, stdout).Records))
}

func TestImport_DatasetScopesOverDatabase(t *testing.T) {
	db := importProjects(t)

	for _, sql := range []bool{false, true} {
		args := []string{"query", "--format", "json", "--db", db, "-d", projectsDataset, "--scope", "urgent_completed"}
		if sql {
			args = append(args, "--sql")
		}
		stdout, _, err := execute(t, args...)
		require.NoError(t, err)
		assert.Equal(t, []int64{3}, objectIDs(t, decodeQuery(t, stdout).Records), "sql=%v", sql)
	}
}

func TestImport_Reimport(t *testing.T) {
	db := importProjects(t)

	_, _, err := execute(t, "import", "--db", db, projectsDataset)
	require.NoError(t, err)

	stdout, _, err := execute(t, "query", "--db", db, "--collection", "Project", "--count")
	require.NoError(t, err)
	assert.Equal(t, "4\n", stdout)
}

func TestImport_Errors(t *testing.T) {
	t.Run("db flag required", func(t *testing.T) {
		_, _, err := execute(t, "import", projectsDataset)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "--db is required")
	})

	t.Run("bad dataset leaves no database", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "never.db")
		_, _, err := execute(t, "import", "--db", db, projectsDataset, "missing.yaml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		_, statErr := os.Stat(db)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unknown collection", func(t *testing.T) {
		db := importProjects(t)
		_, _, err := execute(t, "query", "--db", db, "--collection", "Task")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), `collection "Task" not found`)
	})

	t.Run("db without collection", func(t *testing.T) {
		db := importProjects(t)
		_, _, err := execute(t, "query", "--db", db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--collection is required")
	})
}
