package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retrace/internal/store"
	"github.com/roach88/retrace/internal/testutil"
)

func TestValidate_CleanStore(t *testing.T) {
	path := newSeededStore(t, addEntry("a", 1), addEntry("b", 2))

	out, _, err := runCommand(t, "validate", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 entr(ies) valid")
}

func TestValidate_FindsOrphanInArgs(t *testing.T) {
	// The write guardrail only checks the result graph, so an orphan in
	// the args graph can reach the store and must be caught here.
	bad := store.Entry{
		ID:     "bad",
		Func:   "pkg.broken",
		Args:   testutil.Tuple(1, testutil.Ref(9)),
		Result: testutil.Int(0),
		Seq:    1,
	}
	path := newSeededStore(t, bad)

	out, _, err := runCommand(t, "validate", "--db", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOrphanRefs, resp.Error.Code)

	data, err2 := json.Marshal(resp.Data)
	require.NoError(t, err2)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "bad", result.Issues[0].EntryID)
	assert.Equal(t, "args", result.Issues[0].Graph)
	assert.Equal(t, []string{"path=$[0] ref=9"}, result.Issues[0].Orphans)
}

func TestValidate_FuncFilter(t *testing.T) {
	other := addEntry("x", 1)
	other.Func = "pkg.other"
	path := newSeededStore(t, addEntry("a", 1), other)

	out, _, err := runCommand(t, "validate", "--db", path, "--func", "pkg.add")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entr(ies) valid")
}

func TestValidate_MissingStore(t *testing.T) {
	_, _, err := runCommand(t, "validate", "--db", "/nonexistent/retrace.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
