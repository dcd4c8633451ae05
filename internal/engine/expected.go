package engine

import (
	"log/slog"

	"github.com/roach88/retrace/internal/graph"
)

// BuildExpected computes the self-contained expected graph for one
// recorded call: references into the donor graphs are inlined, the result
// is checked for orphans, all remaining aliasing is expanded, wrappers
// are unwrapped (tuples flattened for the stored snapshot surface), and
// non-finite floats are sanitized.
//
// Returns an ErrCodeOrphanInExpected error when references remain that no
// donor can satisfy; the caller skips that case and continues with the
// rest of the corpus.
func BuildExpected(result graph.Node, args, kwargs graph.Node, funcName string, logger *slog.Logger) (graph.Node, error) {
	if logger == nil {
		logger = slog.Default()
	}

	inlined := InlineExternalRefs(result, args, kwargs)

	if orphans := FindOrphanRefs(inlined, args, kwargs); len(orphans) > 0 {
		logger.Warn("orphan references remain after inlining",
			"func", funcName, "count", len(orphans))
		return nil, NewOrphanInExpectedError(funcName, orphans)
	}

	expanded := expandRefs(inlined, args, kwargs)

	proj := &Projector{TuplesAsLists: true, Logger: logger}
	rendered := proj.Project(expanded, ModeExpected)
	return graph.Sanitize(rendered), nil
}

// expandRefs replaces every reference (internal and external alike) with
// a copy of its target so the expected snapshot needs no anchors at all.
// A cyclic alias cannot be expanded into a finite tree; re-entering an
// anchor mid-expansion yields an empty record placeholder, mirroring how
// a cycle degrades in the flattened snapshot surface.
func expandRefs(root graph.Node, donors ...graph.Node) graph.Node {
	idx := make(map[int]graph.Node)
	graph.Index(root, idx)
	for _, d := range donors {
		if d != nil {
			graph.Index(d, idx)
		}
	}
	ex := &expander{index: idx, busy: make(map[int]bool)}
	return ex.expand(root)
}

type expander struct {
	index map[int]graph.Node
	busy  map[int]bool
}

func (ex *expander) expand(n graph.Node) graph.Node {
	if id := graph.AnchorID(n); id > 0 {
		if ex.busy[id] {
			return &graph.Record{}
		}
		ex.busy[id] = true
		defer delete(ex.busy, id)
	}

	switch v := n.(type) {
	case *graph.Ref:
		if ex.busy[v.Target] {
			return &graph.Record{}
		}
		target, ok := ex.index[v.Target]
		if !ok {
			return &graph.Ref{Target: v.Target}
		}
		return ex.expand(target)

	case *graph.Record:
		fields := make([]graph.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = graph.Field{Name: f.Name, Value: ex.expand(f.Value)}
		}
		return &graph.Record{ID: v.ID, Fields: fields}

	case *graph.List:
		return &graph.List{ID: v.ID, Elems: ex.expandElems(v.Elems)}

	case *graph.Tuple:
		return &graph.Tuple{ID: v.ID, Elems: ex.expandElems(v.Elems)}

	case *graph.Set:
		return &graph.Set{ID: v.ID, Elems: ex.expandElems(v.Elems), Frozen: v.Frozen}

	case *graph.Map:
		pairs := make([]graph.Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = graph.Pair{Key: ex.expand(p.Key), Value: ex.expand(p.Value)}
		}
		return &graph.Map{ID: v.ID, Pairs: pairs}

	default:
		return n
	}
}

func (ex *expander) expandElems(elems []graph.Node) []graph.Node {
	out := make([]graph.Node, len(elems))
	for i, e := range elems {
		out[i] = ex.expand(e)
	}
	return out
}
