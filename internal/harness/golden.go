package harness

import (
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/retrace/internal/engine"
	"github.com/roach88/retrace/internal/graph"
)

// AssertGraphGolden compares a graph's canonical JSON against a golden
// file in testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
func AssertGraphGolden(t *testing.T, name string, n graph.Node) error {
	t.Helper()

	data, err := graph.MarshalCanonical(n)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

// AssertExpectedGolden builds an entry's expected graph and compares it
// against a golden file. Useful for pinning the generation pipeline's
// output for a recorded call.
func AssertExpectedGolden(t *testing.T, name string, result, args, kwargs graph.Node) error {
	t.Helper()

	expected, err := engine.BuildExpected(result, args, kwargs, name, slog.Default())
	if err != nil {
		return err
	}
	return AssertGraphGolden(t, name, expected)
}
