package testutil

import "github.com/roach88/retrace/internal/graph"

// Graph construction helpers for tests. Anchored composites take their
// id first so test graphs read roughly like their JSON form.

// Rec builds an anchored record from name/value pairs in order.
func Rec(id int, pairs ...any) *graph.Record {
	if len(pairs)%2 != 0 {
		panic("Rec requires name/value pairs")
	}
	fields := make([]graph.Field, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		fields = append(fields, graph.Field{
			Name:  pairs[i].(string),
			Value: pairs[i+1].(graph.Node),
		})
	}
	return &graph.Record{ID: id, Fields: fields}
}

// List builds an anchored list.
func List(id int, elems ...graph.Node) *graph.List {
	return &graph.List{ID: id, Elems: elems}
}

// Tuple builds an anchored tuple.
func Tuple(id int, elems ...graph.Node) *graph.Tuple {
	return &graph.Tuple{ID: id, Elems: elems}
}

// Set builds an anchored set. Elements must already be in canonical
// order; builders do not sort.
func Set(id int, elems ...graph.Node) *graph.Set {
	return &graph.Set{ID: id, Elems: elems}
}

// Frozen builds an anchored frozen set.
func Frozen(id int, elems ...graph.Node) *graph.Set {
	return &graph.Set{ID: id, Elems: elems, Frozen: true}
}

// MapOf builds an anchored keyed map from key/value node pairs.
func MapOf(id int, pairs ...graph.Node) *graph.Map {
	if len(pairs)%2 != 0 {
		panic("MapOf requires key/value pairs")
	}
	ps := make([]graph.Pair, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		ps = append(ps, graph.Pair{Key: pairs[i], Value: pairs[i+1]})
	}
	return &graph.Map{ID: id, Pairs: ps}
}

// Ref builds a reference to an anchor.
func Ref(target int) *graph.Ref {
	return &graph.Ref{Target: target}
}

// Str, Int, Float and Bool save a cast at call sites.

func Str(s string) graph.Str      { return graph.Str(s) }
func Int(i int64) graph.Int       { return graph.Int(i) }
func Float(f float64) graph.Float { return graph.Float(f) }
func Bool(b bool) graph.Bool      { return graph.Bool(b) }
