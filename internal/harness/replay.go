package harness

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/roach88/retrace/internal/capture"
	"github.com/roach88/retrace/internal/engine"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/store"
)

// Target is the function under test during a replay. It receives the
// rebuilt positional and keyword arguments of the recorded call.
type Target func(args []any, kwargs map[string]any) (any, error)

// Mismatch reports a replay whose rendered result differs from the
// recorded expectation. Both sides are canonical graph JSON.
type Mismatch struct {
	Func     string
	Entry    string
	Expected string
	Actual   string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("replay mismatch for %s (entry %s):\n  expected: %s\n  actual:   %s",
		m.Func, m.Entry, m.Expected, m.Actual)
}

// Replayer rebuilds recorded calls and checks results against their
// expected graphs.
type Replayer struct {
	MaxDepth int
	Logger   *slog.Logger
}

// NewReplayer returns a Replayer with default capture depth.
func NewReplayer(logger *slog.Logger) *Replayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{MaxDepth: capture.DefaultMaxDepth, Logger: logger}
}

// ReplayEntry materializes the entry's arguments, invokes fn, and
// compares the rendered result against the entry's expected graph.
// Returns *Mismatch when the result differs, or another error when the
// entry cannot be replayed at all.
func (r *Replayer) ReplayEntry(e store.Entry, fn Target) error {
	expected, err := engine.BuildExpected(e.Result, e.Args, e.Kwargs, e.Func, r.Logger)
	if err != nil {
		return fmt.Errorf("building expected for entry %s: %w", e.ID, err)
	}
	return r.replay(e.Func, e.ID, e.Args, e.Kwargs, expected, fn)
}

// ReplayCase replays a generated case file against fn. The expected
// graph comes from the case itself, already inlined at generation time.
func (r *Replayer) ReplayCase(c Case, fn Target) error {
	args, kwargs, expected, err := c.Graphs()
	if err != nil {
		return err
	}
	return r.replay(c.Func, c.Entry, args, kwargs, expected, fn)
}

func (r *Replayer) replay(funcName, entryID string, argsGraph, kwargsGraph, expected graph.Node, fn Target) error {
	args, kwargs, err := materializeCall(argsGraph, kwargsGraph)
	if err != nil {
		return fmt.Errorf("materializing arguments for entry %s: %w", entryID, err)
	}

	actual, err := fn(args, kwargs)
	if err != nil {
		return fmt.Errorf("replaying %s (entry %s): %w", funcName, entryID, err)
	}

	// Render the live result exactly the way generation rendered the
	// recorded one: shared capture with the (possibly mutated) inputs,
	// then inline and project.
	c := capture.New()
	if r.MaxDepth > 0 {
		c.MaxDepth = r.MaxDepth
	}
	nodes := c.CaptureAll(graph.TupleValue(args), kwargs, actual)
	rendered, err := engine.BuildExpected(nodes[2], nodes[0], nodes[1], funcName, r.Logger)
	if err != nil {
		return fmt.Errorf("rendering replay result for entry %s: %w", entryID, err)
	}

	expectedJSON, err := graph.MarshalCanonical(expected)
	if err != nil {
		return fmt.Errorf("marshaling expected for entry %s: %w", entryID, err)
	}
	actualJSON, err := graph.MarshalCanonical(rendered)
	if err != nil {
		return fmt.Errorf("marshaling replay result for entry %s: %w", entryID, err)
	}

	if !bytes.Equal(expectedJSON, actualJSON) {
		return &Mismatch{
			Func:     funcName,
			Entry:    entryID,
			Expected: string(expectedJSON),
			Actual:   string(actualJSON),
		}
	}
	return nil
}

// materializeCall rebuilds the live argument values. Both graphs share
// one materializer, so a composite referenced from positional and
// keyword arguments comes back as the same value.
func materializeCall(argsGraph, kwargsGraph graph.Node) ([]any, map[string]any, error) {
	vals, err := engine.MaterializeAll([]graph.Node{argsGraph, kwargsGraph})
	if err != nil {
		return nil, nil, err
	}
	argsVal, kwargsVal := vals[0], vals[1]

	var args []any
	switch v := argsVal.(type) {
	case nil:
	case graph.TupleValue:
		args = []any(v)
	case []any:
		args = v
	default:
		return nil, nil, fmt.Errorf("arguments materialized to %T, want tuple", argsVal)
	}

	var kwargs map[string]any
	switch v := kwargsVal.(type) {
	case nil:
	case map[string]any:
		kwargs = v
	default:
		return nil, nil, fmt.Errorf("keyword arguments materialized to %T, want map", kwargsVal)
	}
	return args, kwargs, nil
}
