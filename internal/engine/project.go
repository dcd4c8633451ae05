package engine

import (
	"log/slog"

	"github.com/roach88/retrace/internal/graph"
)

// Mode selects the projection context.
type Mode string

const (
	// ModeCapture is used right after tracing. Surviving references are
	// legal but logged, since no anchors remain in the rendered output
	// to satisfy them locally.
	ModeCapture Mode = "capture"

	// ModeExpected is used when building a self-contained comparison
	// graph, where external references are assumed already inlined
	// upstream. Any leftover reference is the caller's problem.
	ModeExpected Mode = "expected"
)

// Projector converts anchored graphs into the rendered view used for
// inspection, comparison, and storage.
type Projector struct {
	// TuplesAsLists flattens tuple wrappers into plain lists.
	TuplesAsLists bool

	// Logger receives capture-mode diagnostics. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Project strips every anchor id and unwraps wrapper kinds into their
// native shapes. Reference nodes pass through untouched. The result is a
// fresh tree; projecting an already-rendered graph again is a no-op
// structurally (there is nothing left to strip or unwrap).
func (p *Projector) Project(n graph.Node, mode Mode) graph.Node {
	return p.project(n, mode)
}

// Project renders a graph with default settings.
func Project(n graph.Node, mode Mode) graph.Node {
	return (&Projector{}).Project(n, mode)
}

func (p *Projector) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Projector) project(n graph.Node, mode Mode) graph.Node {
	switch v := n.(type) {
	case *graph.Ref:
		if mode == ModeCapture {
			p.logger().Warn("emitting reference without a surviving anchor in rendered projection",
				"ref", v.Target)
		}
		return &graph.Ref{Target: v.Target}

	case *graph.Record:
		fields := make([]graph.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = graph.Field{Name: f.Name, Value: p.project(f.Value, mode)}
		}
		return &graph.Record{Fields: fields}

	case *graph.List:
		return &graph.List{Elems: p.projectElems(v.Elems, mode)}

	case *graph.Tuple:
		elems := p.projectElems(v.Elems, mode)
		if p.TuplesAsLists {
			return &graph.List{Elems: elems}
		}
		return &graph.Tuple{Elems: elems}

	case *graph.Set:
		return &graph.Set{Elems: p.projectElems(v.Elems, mode), Frozen: v.Frozen}

	case *graph.Map:
		pairs := make([]graph.Pair, len(v.Pairs))
		for i, pr := range v.Pairs {
			pairs[i] = graph.Pair{Key: p.project(pr.Key, mode), Value: p.project(pr.Value, mode)}
		}
		return &graph.Map{Pairs: pairs}

	default:
		return n
	}
}

func (p *Projector) projectElems(elems []graph.Node, mode Mode) []graph.Node {
	out := make([]graph.Node, len(elems))
	for i, e := range elems {
		out[i] = p.project(e, mode)
	}
	return out
}
