package store

import (
	"fmt"

	"github.com/roach88/retrace/internal/graph"
)

// marshalGraph converts a graph to canonical JSON text for storage.
// A nil graph stores as JSON null so absent kwargs round-trip cleanly.
func marshalGraph(n graph.Node) (string, error) {
	if n == nil {
		return "null", nil
	}
	data, err := graph.MarshalCanonical(n)
	if err != nil {
		return "", fmt.Errorf("marshal graph: %w", err)
	}
	return string(data), nil
}

// unmarshalGraph parses stored canonical JSON text back into a graph.
func unmarshalGraph(data string) (graph.Node, error) {
	if data == "" {
		return graph.Null{}, nil
	}
	n, err := graph.UnmarshalNode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	return n, nil
}
