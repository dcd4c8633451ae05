package engine

import "github.com/roach88/retrace/internal/graph"

// InlineExternalRefs replaces references in expected that point outside
// it with deep, anchor-stripped copies of the donor subgraph at that
// anchor. References that resolve inside expected are true aliasing and
// are left untouched, as are references no donor can satisfy (the caller
// decides whether that is an error). Inlining is transitive: references
// inside an inlined copy resolve against the donors again.
//
// Inputs are never mutated; the result is a fresh tree.
func InlineExternalRefs(expected graph.Node, donors ...graph.Node) graph.Node {
	internal := graph.AnchorSet(expected)

	donorIdx := make(map[int]graph.Node)
	for _, d := range donors {
		if d != nil {
			graph.Index(d, donorIdx)
		}
	}

	in := &inliner{internal: internal, donors: donorIdx, busy: make(map[int]bool)}
	return in.inline(expected)
}

type inliner struct {
	internal map[int]struct{}
	donors   map[int]graph.Node

	// busy guards against a donor subgraph that references an anchor
	// currently being inlined; such back-edges stay as references and
	// surface through the downstream orphan gate.
	busy map[int]bool
}

func (in *inliner) inline(n graph.Node) graph.Node {
	switch v := n.(type) {
	case *graph.Ref:
		if _, isInternal := in.internal[v.Target]; isInternal {
			return &graph.Ref{Target: v.Target}
		}
		donor, ok := in.donors[v.Target]
		if !ok || in.busy[v.Target] {
			return &graph.Ref{Target: v.Target}
		}
		in.busy[v.Target] = true
		out := in.inline(stripAnchors(donor))
		delete(in.busy, v.Target)
		return out

	case *graph.Record:
		fields := make([]graph.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = graph.Field{Name: f.Name, Value: in.inline(f.Value)}
		}
		return &graph.Record{ID: v.ID, Fields: fields}

	case *graph.List:
		return &graph.List{ID: v.ID, Elems: in.inlineElems(v.Elems)}

	case *graph.Tuple:
		return &graph.Tuple{ID: v.ID, Elems: in.inlineElems(v.Elems)}

	case *graph.Set:
		return &graph.Set{ID: v.ID, Elems: in.inlineElems(v.Elems), Frozen: v.Frozen}

	case *graph.Map:
		pairs := make([]graph.Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = graph.Pair{Key: in.inline(p.Key), Value: in.inline(p.Value)}
		}
		return &graph.Map{ID: v.ID, Pairs: pairs}

	default:
		return n
	}
}

func (in *inliner) inlineElems(elems []graph.Node) []graph.Node {
	out := make([]graph.Node, len(elems))
	for i, e := range elems {
		out[i] = in.inline(e)
	}
	return out
}

// stripAnchors deep-copies a donor subgraph with every anchor id removed.
func stripAnchors(n graph.Node) graph.Node {
	switch v := n.(type) {
	case *graph.Record:
		fields := make([]graph.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = graph.Field{Name: f.Name, Value: stripAnchors(f.Value)}
		}
		return &graph.Record{Fields: fields}
	case *graph.List:
		return &graph.List{Elems: stripElems(v.Elems)}
	case *graph.Tuple:
		return &graph.Tuple{Elems: stripElems(v.Elems)}
	case *graph.Set:
		return &graph.Set{Elems: stripElems(v.Elems), Frozen: v.Frozen}
	case *graph.Map:
		pairs := make([]graph.Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = graph.Pair{Key: stripAnchors(p.Key), Value: stripAnchors(p.Value)}
		}
		return &graph.Map{Pairs: pairs}
	case *graph.Ref:
		return &graph.Ref{Target: v.Target}
	default:
		return n
	}
}

func stripElems(elems []graph.Node) []graph.Node {
	out := make([]graph.Node, len(elems))
	for i, e := range elems {
		out[i] = stripAnchors(e)
	}
	return out
}
