package graph

// Plain-value vocabulary produced by materialization. Scalars come back
// as nil, bool, int64, float64, string, and []byte; records as
// map[string]any; lists as []any. The named types below carry the
// container semantics that plain Go values cannot express.

// TupleValue is an ordered, fixed sequence with value semantics.
type TupleValue []any

// SetValue is an unordered collection. Elems holds the elements in the
// canonical order they were captured in. Always used by pointer so a
// cyclic set can be memoized before its elements are filled.
type SetValue struct {
	Elems  []any
	Frozen bool
}

// MapValue is a mapping with non-string keys, kept as ordered pairs
// because arbitrary materialized keys need not be hashable in Go.
type MapValue struct {
	Pairs [][2]any
}
