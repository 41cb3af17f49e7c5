package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/ir"
)

const projectsDataset = "../dataset/testdata/projects.yaml"

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeQuery parses a JSON query response.
func decodeQuery(t *testing.T, out string) QueryOutput {
	t.Helper()
	var resp struct {
		Status string      `json:"status"`
		Data   QueryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func objectIDs(t *testing.T, objs []ir.IRObject) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(objs))
	for _, obj := range objs {
		id, ok := obj["id"].(ir.IRInt)
		require.True(t, ok, "record without integer id: %v", obj)
		ids = append(ids, int64(id))
	}
	return ids
}
