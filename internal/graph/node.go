package graph

// Node is a sealed interface representing one node of an anchored or
// rendered object graph. Only the scalar types (Null, Bool, Int, Float,
// Str, Bytes), the composite types (*Record, *List, *Tuple, *Set, *Map),
// and *Ref implement it.
type Node interface {
	node() // Sealed - only these types implement it
}

// Null represents an absent value. Scalars are never anchored and never
// the target of a reference.
type Null struct{}

func (Null) node() {}

// Bool represents a boolean scalar.
type Bool bool

func (Bool) node() {}

// Int represents an integer scalar. Always int64 on the wire to avoid
// float64 precision loss for values > 2^53.
type Int int64

func (Int) node() {}

// Float represents a floating-point scalar. NaN and infinities are legal
// in-memory but must be sanitized (see Sanitize) before serialization.
type Float float64

func (Float) node() {}

// Str represents a string scalar.
type Str string

func (Str) node() {}

// Bytes represents a byte-string scalar. Serializes as base64 text.
type Bytes []byte

func (Bytes) node() {}

// Field is one named field of a Record, in capture order.
type Field struct {
	Name  string
	Value Node
}

// Record is a composite with string-keyed public fields: a string-keyed
// mapping or a custom object's exported attributes. Field order is part
// of the representation and is preserved by the codec.
type Record struct {
	ID     int
	Fields []Field
}

func (*Record) node() {}

// Get returns the value of the named field.
func (r *Record) Get(name string) (Node, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// List is a sequence with list semantics.
type List struct {
	ID    int
	Elems []Node
}

func (*List) node() {}

// Tuple is a fixed, order-significant sequence with value semantics.
type Tuple struct {
	ID    int
	Elems []Node
}

func (*Tuple) node() {}

// Set is an unordered collection stored in canonical deterministic order.
// Frozen records whether the source collection was immutable.
type Set struct {
	ID     int
	Elems  []Node
	Frozen bool
}

func (*Set) node() {}

// Pair is one key/value pair of a Map.
type Pair struct {
	Key   Node
	Value Node
}

// Map is a mapping whose keys are not plain strings, stored as an explicit
// ordered list of key/value pairs in canonical deterministic order.
type Map struct {
	ID    int
	Pairs []Pair
}

func (*Map) node() {}

// Ref stands in for a composite already anchored elsewhere in the same
// graph or in a donor graph.
type Ref struct {
	Target int
}

func (*Ref) node() {}

// AnchorID returns the anchor carried by a composite node, or 0 if the
// node is a scalar, a reference, or unanchored.
func AnchorID(n Node) int {
	switch v := n.(type) {
	case *Record:
		return v.ID
	case *List:
		return v.ID
	case *Tuple:
		return v.ID
	case *Set:
		return v.ID
	case *Map:
		return v.ID
	}
	return 0
}

// Clone returns a deep copy of n. Scalars are returned as-is since they
// are immutable values.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Record:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{Name: f.Name, Value: Clone(f.Value)}
		}
		return &Record{ID: v.ID, Fields: fields}
	case *List:
		return &List{ID: v.ID, Elems: cloneElems(v.Elems)}
	case *Tuple:
		return &Tuple{ID: v.ID, Elems: cloneElems(v.Elems)}
	case *Set:
		return &Set{ID: v.ID, Elems: cloneElems(v.Elems), Frozen: v.Frozen}
	case *Map:
		pairs := make([]Pair, len(v.Pairs))
		for i, p := range v.Pairs {
			pairs[i] = Pair{Key: Clone(p.Key), Value: Clone(p.Value)}
		}
		return &Map{ID: v.ID, Pairs: pairs}
	case *Ref:
		return &Ref{Target: v.Target}
	case Bytes:
		out := make(Bytes, len(v))
		copy(out, v)
		return out
	default:
		return n
	}
}

func cloneElems(elems []Node) []Node {
	out := make([]Node, len(elems))
	for i, e := range elems {
		out[i] = Clone(e)
	}
	return out
}
