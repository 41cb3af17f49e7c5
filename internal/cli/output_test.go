package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/ir"
	"github.com/roach88/relq/internal/relation"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("RECORD_NOT_FOUND", "couldn't find Project", map[string]int{"id": -1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "RECORD_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "couldn't find Project", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("done"))
	require.NoError(t, formatter.Error("INVALID_DIRECTION", "bad order", map[string]string{"attr": "id"}))

	assert.Equal(t, "done\nError [INVALID_DIRECTION]: bad order\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("INVALID_DIRECTION", "bad order", "id:sideways"))
	assert.Contains(t, buf.String(), "Details: id:sideways")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: tt.verbose}

			formatter.VerboseLog("loading %s", "projects.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Equal(t, "loading projects.yaml\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitFailure, "query failed", relation.NewRecordNotFoundError("Project", "id", ir.IRInt(-1)))
	assert.Equal(t, `query failed: RECORD_NOT_FOUND: couldn't find Project with id=-1 (model=Project)`, wrapped.Error())
	assert.True(t, relation.IsRecordNotFound(wrapped))
}

func TestRelationExitError(t *testing.T) {
	tests := []struct {
		code relation.ErrorCode
		want int
	}{
		{relation.ErrCodeInvalidDirection, ExitCommandError},
		{relation.ErrCodeInvalidArgument, ExitCommandError},
		{relation.ErrCodeUnknownOperation, ExitCommandError},
		{relation.ErrCodeRecordNotFound, ExitFailure},
		{relation.ErrCodeAttributeNotFound, ExitFailure},
		{relation.ErrCodeIncomparable, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := relationExitError("failed", &relation.Error{Code: tt.code, Message: "m"})
			assert.Equal(t, tt.want, err.Code)
			assert.Equal(t, string(tt.code), errorCode(err))
		})
	}
	assert.Equal(t, "ERROR", errorCode(errors.New("plain")))
}

func TestRecordLines(t *testing.T) {
	lines := recordLines{
		ir.NewIRObjectFromPairs(ir.O("state", ir.IRString("draft")), ir.O("id", ir.IRInt(1)), ir.O("done", ir.IRBool(false))),
		ir.IRObject{"id": ir.IRInt(2), "owner": ir.IRNull{}},
	}
	assert.Equal(t, "done=false id=1 state=\"draft\"\nid=2 owner=null", lines.String())
	assert.Equal(t, "(no records)", recordLines(nil).String())
}
