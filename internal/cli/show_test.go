package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShow_EntryAsYAML(t *testing.T) {
	path := newSeededStore(t, addEntry("entry-1", 1))

	out, _, err := runCommand(t, "show", "entry-1", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "id: entry-1")
	assert.Contains(t, out, "func: pkg.add")
	assert.Contains(t, out, `result: '{"ref":2}'`)
}

func TestShow_EntryAsJSON(t *testing.T) {
	path := newSeededStore(t, addEntry("entry-1", 1))

	out, _, err := runCommand(t, "show", "entry-1", "--db", path, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var view EntryView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "entry-1", view.ID)
	assert.Equal(t, `{"ref":2}`, view.Result)
}

func TestShow_ListsFuncs(t *testing.T) {
	other := addEntry("x", 1)
	other.Func = "pkg.other"
	path := newSeededStore(t, addEntry("a", 1), addEntry("b", 2), other)

	out, _, err := runCommand(t, "show", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pkg.add  2 entr(ies)")
	assert.Contains(t, out, "pkg.other  1 entr(ies)")
}

func TestShow_NotFound(t *testing.T) {
	path := newSeededStore(t)

	_, _, err := runCommand(t, "show", "missing", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
