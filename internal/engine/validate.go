package engine

import "github.com/roach88/retrace/internal/graph"

// FindOrphanRefs returns every reference in g whose target anchor exists
// neither in g itself nor in any donor graph, each tagged with the
// JSONPath of the reference node. Pure function, no side effects; used
// both for diagnostics and as the precondition gate before persistence.
//
// Anchors inside g satisfy its own references (internal aliasing), so a
// rendered graph that still carries anchors is handled correctly.
func FindOrphanRefs(g graph.Node, donors ...graph.Node) []OrphanRef {
	ids := graph.AnchorSet(donors...)
	graph.Anchors(g, ids)

	var out []OrphanRef
	graph.WalkRefs(g, func(path string, id int) {
		if _, ok := ids[id]; !ok {
			out = append(out, OrphanRef{Path: path, ID: id})
		}
	})
	return out
}

// FindLocalOrphanRefs reports references with no anchor in the same
// graph, ignoring any donors. Used by strict capture checking, where a
// reference must be satisfied by its own capture pass.
func FindLocalOrphanRefs(g graph.Node) []OrphanRef {
	return FindOrphanRefs(g)
}
