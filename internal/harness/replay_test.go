package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"

	"github.com/roach88/retrace/internal/engine"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/store"
	"github.com/roach88/retrace/internal/testutil"
)

// recordCall records one invocation of fn and returns the stored entry.
func recordCall(t *testing.T, s *store.Store, funcName string, args []any, kwargs map[string]any, fn Target) store.Entry {
	t.Helper()
	result, err := fn(args, kwargs)
	require.NoError(t, err)

	r := NewRecorder(s, quiet())
	r.EntryID = testutil.SeqEntryIDs(funcName)
	id := r.Record(context.Background(), funcName, args, kwargs, result)
	require.NotEmpty(t, id)

	e, err := s.ReadEntry(context.Background(), id)
	require.NoError(t, err)
	return e
}

func sum(args []any, kwargs map[string]any) (any, error) {
	var total int64
	for _, a := range args {
		n, ok := a.(int64)
		if !ok {
			return nil, fmt.Errorf("not an int64: %v", a)
		}
		total += n
	}
	return total, nil
}

func TestReplayEntry_Deterministic(t *testing.T) {
	s := newTestStore(t)
	e := recordCall(t, s, "pkg.sum", []any{int64(2), int64(3)}, nil, sum)

	r := NewReplayer(quiet())
	require.NoError(t, r.ReplayEntry(e, sum))
}

func TestReplayEntry_ResultAliasingArgs(t *testing.T) {
	// The function returns its first argument; recorded as a reference
	// into the args graph, rebuilt and re-rendered on replay.
	first := func(args []any, kwargs map[string]any) (any, error) {
		return args[0], nil
	}

	s := newTestStore(t)
	xs := []any{int64(1), int64(2)}
	e := recordCall(t, s, "pkg.first", []any{xs, "other"}, nil, first)

	r := NewReplayer(quiet())
	require.NoError(t, r.ReplayEntry(e, first))
}

func TestReplayEntry_Mismatch(t *testing.T) {
	s := newTestStore(t)
	e := recordCall(t, s, "pkg.sum", []any{int64(2), int64(3)}, nil, sum)

	broken := func(args []any, kwargs map[string]any) (any, error) {
		return int64(6), nil
	}

	r := NewReplayer(quiet())
	err := r.ReplayEntry(e, broken)
	require.Error(t, err)

	var mismatch *Mismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "pkg.sum", mismatch.Func)
	assert.Equal(t, "5", mismatch.Expected)
	assert.Equal(t, "6", mismatch.Actual)
}

func TestReplayEntry_TargetErrorPropagates(t *testing.T) {
	s := newTestStore(t)
	e := recordCall(t, s, "pkg.sum", []any{int64(1)}, nil, sum)

	failing := func(args []any, kwargs map[string]any) (any, error) {
		return nil, errors.New("boom")
	}

	r := NewReplayer(quiet())
	err := r.ReplayEntry(e, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func mustCanonical(t *testing.T, n graph.Node) string {
	t.Helper()
	data, err := graph.MarshalCanonical(n)
	require.NoError(t, err)
	return string(data)
}

func TestReplayCase_FromGeneratedYAML(t *testing.T) {
	s := newTestStore(t)
	e := recordCall(t, s, "pkg.sum", []any{int64(4), int64(5)}, nil, sum)

	// Build the case document the way generation does.
	expected, err := engine.BuildExpected(e.Result, e.Args, e.Kwargs, e.Func, quiet())
	require.NoError(t, err)

	c := Case{
		Func:     e.Func,
		Entry:    e.ID,
		Args:     mustCanonical(t, e.Args),
		Kwargs:   mustCanonical(t, e.Kwargs),
		Expected: mustCanonical(t, expected),
	}
	data, err := yaml.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadCase(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	r := NewReplayer(quiet())
	require.NoError(t, r.ReplayCase(loaded, sum))
}
