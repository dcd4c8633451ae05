package graph

import "math"

// Sanitize replaces NaN and infinite floats with Null so that the graph
// can be serialized and compared as JSON-able data. Returns a fresh tree;
// the input is never mutated.
func Sanitize(n Node) Node {
	switch v := n.(type) {
	case Float:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Null{}
		}
		return v
	case *Record:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{Name: f.Name, Value: Sanitize(f.Value)}
		}
		return &Record{ID: v.ID, Fields: fields}
	case *List:
		return &List{ID: v.ID, Elems: sanitizeElems(v.Elems)}
	case *Tuple:
		return &Tuple{ID: v.ID, Elems: sanitizeElems(v.Elems)}
	case *Set:
		return &Set{ID: v.ID, Elems: sanitizeElems(v.Elems), Frozen: v.Frozen}
	case *Map:
		pairs := make([]Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = Pair{Key: Sanitize(p.Key), Value: Sanitize(p.Value)}
		}
		return &Map{ID: v.ID, Pairs: pairs}
	default:
		return n
	}
}

func sanitizeElems(elems []Node) []Node {
	out := make([]Node, len(elems))
	for i, e := range elems {
		out[i] = Sanitize(e)
	}
	return out
}
