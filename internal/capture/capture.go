package capture

import (
	"math"
	"reflect"
	"sort"

	"github.com/roach88/retrace/internal/graph"
)

// DefaultMaxDepth bounds traversal when the caller does not choose one.
const DefaultMaxDepth = 5

// ErrSentinel is recorded in place of a field whose capture panicked.
const ErrSentinel = "<capture-error>"

// Capturer walks runtime values into anchored graphs. The zero value is
// not usable; construct with New.
type Capturer struct {
	// MaxDepth bounds composite traversal. When it reaches zero, a
	// composite is replaced by a textual fallback instead of recursing.
	MaxDepth int

	// Describer exposes public fields of custom objects.
	Describer FieldDescriber
}

// New returns a Capturer with the default depth and reflection-based
// field description.
func New() *Capturer {
	return &Capturer{MaxDepth: DefaultMaxDepth, Describer: ReflectDescriber{}}
}

// Capture walks v and returns its anchored graph. Each call owns a fresh
// identity memo: anchors start at 1 and are unique within this call only.
// Capture never panics and never mutates v.
func (c *Capturer) Capture(v any) graph.Node {
	m := &memo{labels: make(map[identity]int), next: 1}
	return c.walk(reflect.ValueOf(v), c.maxDepth(), m)
}

// CaptureAll walks several roots with one shared identity memo, so a
// composite reachable from more than one root is anchored once and
// referenced everywhere else. Anchors number across the roots in
// order. This is how a call's arguments and result end up in graphs
// that can reference each other.
func (c *Capturer) CaptureAll(vs ...any) []graph.Node {
	m := &memo{labels: make(map[identity]int), next: 1}
	nodes := make([]graph.Node, len(vs))
	for i, v := range vs {
		nodes[i] = c.walk(reflect.ValueOf(v), c.maxDepth(), m)
	}
	return nodes
}

// Capture is a convenience wrapper using the default describer.
func Capture(v any, maxDepth int) graph.Node {
	c := New()
	c.MaxDepth = maxDepth
	return c.Capture(v)
}

func (c *Capturer) maxDepth() int {
	if c.MaxDepth > 0 {
		return c.MaxDepth
	}
	return DefaultMaxDepth
}

func (c *Capturer) describer() FieldDescriber {
	if c.Describer != nil {
		return c.Describer
	}
	return ReflectDescriber{}
}

// identity keys the per-call memo. Pointers and maps are identified by
// their address; slices by address plus length so that reslices of the
// same backing array are distinct values but a repeated slice header is
// one anchor.
type identity struct {
	ptr    uintptr
	kind   reflect.Kind
	length int
}

type memo struct {
	labels map[identity]int
	next   int
}

func (m *memo) lookup(key identity) (int, bool) {
	lbl, ok := m.labels[key]
	return lbl, ok
}

// alloc assigns the next anchor to key. Anchor assignment happens before
// recursing into children; that is the invariant that turns cycles into
// reference nodes instead of infinite recursion.
func (m *memo) alloc(keys ...identity) int {
	lbl := m.next
	m.next++
	for _, k := range keys {
		m.labels[k] = lbl
	}
	return lbl
}

var (
	tupleValueType = reflect.TypeOf(graph.TupleValue(nil))
	setValueType   = reflect.TypeOf(graph.SetValue{})
	mapValueType   = reflect.TypeOf(graph.MapValue{})
)

func (c *Capturer) walk(rv reflect.Value, depth int, m *memo) graph.Node {
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return graph.Null{}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return graph.Null{}
	}
	if s, ok := scalarOf(rv); ok {
		return s
	}
	if depth <= 0 {
		return graph.Str(fallbackString(interfaceOf(rv)))
	}

	// Engine value types round-trip to their own node kinds.
	switch rv.Type() {
	case tupleValueType:
		return c.captureTupleValue(rv, depth, m)
	case setValueType:
		return c.captureSetValue(rv, depth, m, m.alloc())
	case mapValueType:
		return c.captureMapValue(rv, depth, m, m.alloc())
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return c.capturePointer(rv, depth, m)

	case reflect.Map:
		if rv.IsNil() {
			return graph.Null{}
		}
		key := identity{ptr: rv.Pointer(), kind: reflect.Map}
		if lbl, ok := m.lookup(key); ok {
			return &graph.Ref{Target: lbl}
		}
		return c.captureMap(rv, depth, m, m.alloc(key))

	case reflect.Slice:
		if rv.IsNil() {
			return graph.Null{}
		}
		key := identity{ptr: rv.Pointer(), kind: reflect.Slice, length: rv.Len()}
		if lbl, ok := m.lookup(key); ok {
			return &graph.Ref{Target: lbl}
		}
		lbl := m.alloc(key)
		return &graph.List{ID: lbl, Elems: c.captureElems(rv, depth, m)}

	case reflect.Array:
		return &graph.Tuple{ID: m.alloc(), Elems: c.captureElems(rv, depth, m)}

	case reflect.Struct:
		return c.captureObject(rv, depth, m)

	default:
		// func, chan, complex, unsafe pointers: inert text.
		return graph.Str(fallbackString(interfaceOf(rv)))
	}
}

func (c *Capturer) capturePointer(rv reflect.Value, depth int, m *memo) graph.Node {
	if rv.IsNil() {
		return graph.Null{}
	}
	key := identity{ptr: rv.Pointer(), kind: reflect.Pointer}
	if lbl, ok := m.lookup(key); ok {
		return &graph.Ref{Target: lbl}
	}

	elem := rv.Elem()
	if s, ok := scalarOf(elem); ok {
		// Scalar pointees are never anchored; aliasing a *int is not
		// observable in the inert representation.
		return s
	}

	switch elem.Type() {
	case setValueType:
		return c.captureSetValue(elem, depth, m, m.alloc(key))
	case mapValueType:
		return c.captureMapValue(elem, depth, m, m.alloc(key))
	}

	switch elem.Kind() {
	case reflect.Interface, reflect.Pointer:
		return c.walk(elem, depth, m)

	case reflect.Map:
		if elem.IsNil() {
			return graph.Null{}
		}
		mapKey := identity{ptr: elem.Pointer(), kind: reflect.Map}
		if lbl, ok := m.lookup(mapKey); ok {
			m.labels[key] = lbl
			return &graph.Ref{Target: lbl}
		}
		return c.captureMap(elem, depth, m, m.alloc(key, mapKey))

	case reflect.Slice:
		if elem.IsNil() {
			return graph.Null{}
		}
		sliceKey := identity{ptr: elem.Pointer(), kind: reflect.Slice, length: elem.Len()}
		if lbl, ok := m.lookup(sliceKey); ok {
			m.labels[key] = lbl
			return &graph.Ref{Target: lbl}
		}
		lbl := m.alloc(key, sliceKey)
		return &graph.List{ID: lbl, Elems: c.captureElems(elem, depth, m)}

	case reflect.Array:
		return &graph.Tuple{ID: m.alloc(key), Elems: c.captureElems(elem, depth, m)}

	case reflect.Struct:
		return c.captureObject(elem, depth, m, key)

	default:
		return graph.Str(fallbackString(interfaceOf(rv)))
	}
}

func (c *Capturer) captureElems(rv reflect.Value, depth int, m *memo) []graph.Node {
	elems := make([]graph.Node, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elems[i] = c.walk(rv.Index(i), depth-1, m)
	}
	return elems
}

// captureMap dispatches on the map's key shape: string keys become a
// record, struct{} values mark a set, anything else becomes an explicit
// key/value pair list.
func (c *Capturer) captureMap(rv reflect.Value, depth int, m *memo, lbl int) graph.Node {
	rt := rv.Type()

	if rt.Elem() == reflect.TypeOf(struct{}{}) {
		keys := sortedMapKeys(rv)
		elems := make([]graph.Node, len(keys))
		for i, k := range keys {
			elems[i] = c.walk(k, depth-1, m)
		}
		return &graph.Set{ID: lbl, Elems: elems, Frozen: false}
	}

	if rt.Key().Kind() == reflect.String {
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			names[i] = k.String()
			byName[names[i]] = k
		}
		sort.Slice(names, func(i, j int) bool {
			return graph.CompareCanonical(names[i], names[j]) < 0
		})
		fields := make([]graph.Field, len(names))
		for i, name := range names {
			fields[i] = graph.Field{
				Name:  name,
				Value: c.walk(rv.MapIndex(byName[name]), depth-1, m),
			}
		}
		return &graph.Record{ID: lbl, Fields: fields}
	}

	keys := sortedMapKeys(rv)
	pairs := make([]graph.Pair, len(keys))
	for i, k := range keys {
		pairs[i] = graph.Pair{
			Key:   c.walk(k, depth-1, m),
			Value: c.walk(rv.MapIndex(k), depth-1, m),
		}
	}
	return &graph.Map{ID: lbl, Pairs: pairs}
}

func (c *Capturer) captureTupleValue(rv reflect.Value, depth int, m *memo) graph.Node {
	if rv.IsNil() {
		return &graph.Tuple{ID: m.alloc()}
	}
	key := identity{ptr: rv.Pointer(), kind: reflect.Slice, length: rv.Len()}
	if lbl, ok := m.lookup(key); ok {
		return &graph.Ref{Target: lbl}
	}
	lbl := m.alloc(key)
	return &graph.Tuple{ID: lbl, Elems: c.captureElems(rv, depth, m)}
}

func (c *Capturer) captureSetValue(rv reflect.Value, depth int, m *memo, lbl int) graph.Node {
	sv := rv.Interface().(graph.SetValue)
	ordered := append([]any(nil), sv.Elems...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sortKey(ordered[i]) < sortKey(ordered[j])
	})
	elems := make([]graph.Node, len(ordered))
	for i, e := range ordered {
		elems[i] = c.walk(reflect.ValueOf(e), depth-1, m)
	}
	return &graph.Set{ID: lbl, Elems: elems, Frozen: sv.Frozen}
}

func (c *Capturer) captureMapValue(rv reflect.Value, depth int, m *memo, lbl int) graph.Node {
	mv := rv.Interface().(graph.MapValue)
	ordered := append([][2]any(nil), mv.Pairs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return sortKey(ordered[i][0]) < sortKey(ordered[j][0])
	})
	pairs := make([]graph.Pair, len(ordered))
	for i, p := range ordered {
		pairs[i] = graph.Pair{
			Key:   c.walk(reflect.ValueOf(p[0]), depth-1, m),
			Value: c.walk(reflect.ValueOf(p[1]), depth-1, m),
		}
	}
	return &graph.Map{ID: lbl, Pairs: pairs}
}

// captureObject records the public fields of a custom object. A panic
// while capturing a single field is recorded as a sentinel string; the
// rest of the object still captures. The anchor (and any memo keys for
// it) is allocated only once the describer accepts the value, so a
// value degrading to fallback text never leaves a dangling memo entry
// that later occurrences would turn into unresolvable references.
func (c *Capturer) captureObject(rv reflect.Value, depth int, m *memo, keys ...identity) graph.Node {
	v := interfaceOf(rv)
	described, ok := c.describer().DescribeFields(v)
	if !ok {
		return graph.Str(fallbackString(v))
	}
	lbl := m.alloc(keys...)
	fields := make([]graph.Field, len(described))
	for i, f := range described {
		fields[i] = graph.Field{Name: f.Name, Value: c.captureField(f.Value, depth, m)}
	}
	return &graph.Record{ID: lbl, Fields: fields}
}

func (c *Capturer) captureField(v any, depth int, m *memo) (n graph.Node) {
	defer func() {
		if recover() != nil {
			n = graph.Str(ErrSentinel)
		}
	}()
	return c.walk(reflect.ValueOf(v), depth-1, m)
}

// sortedMapKeys returns the map's keys ordered by their textual form so
// capture order (and therefore anchor numbering) is deterministic.
func sortedMapKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return sortKey(interfaceOf(keys[i])) < sortKey(interfaceOf(keys[j]))
	})
	return keys
}

func scalarOf(rv reflect.Value) (graph.Node, bool) {
	switch rv.Kind() {
	case reflect.Bool:
		return graph.Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return graph.Int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return graph.Float(float64(u)), true
		}
		return graph.Int(int64(u)), true
	case reflect.Float32, reflect.Float64:
		return graph.Float(rv.Float()), true
	case reflect.String:
		return graph.Str(rv.String()), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return graph.Null{}, true
			}
			b := make(graph.Bytes, rv.Len())
			reflect.Copy(reflect.ValueOf([]byte(b)), rv)
			return b, true
		}
	}
	return nil, false
}

func interfaceOf(rv reflect.Value) any {
	if rv.CanInterface() {
		return rv.Interface()
	}
	return "<" + rv.Type().String() + ">"
}
