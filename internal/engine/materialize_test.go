package engine

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/retrace/internal/capture"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/testutil"
)

func TestMaterialize_Scalars(t *testing.T) {
	tests := []struct {
		name string
		node graph.Node
		want any
	}{
		{"null", graph.Null{}, nil},
		{"bool", graph.Bool(true), true},
		{"int", graph.Int(3), int64(3)},
		{"float", graph.Float(1.5), 1.5},
		{"string", graph.Str("x"), "x"},
		{"bytes", graph.Bytes{1, 2}, []byte{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Materialize(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaterialize_Containers(t *testing.T) {
	g := testutil.Rec(1,
		"xs", testutil.List(2, testutil.Int(1), testutil.Int(2)),
		"t", testutil.Tuple(3, testutil.Str("a")),
		"s", testutil.Frozen(4, testutil.Int(1)),
		"m", testutil.MapOf(5, testutil.Int(1), testutil.Str("one")),
	)

	got, err := Materialize(g)
	require.NoError(t, err)

	want := map[string]any{
		"xs": []any{int64(1), int64(2)},
		"t":  graph.TupleValue{"a"},
		"s":  &graph.SetValue{Elems: []any{int64(1)}, Frozen: true},
		"m":  &graph.MapValue{Pairs: [][2]any{{int64(1), "one"}}},
	}
	assert.Equal(t, want, got)
}

func TestMaterialize_AliasingRestored(t *testing.T) {
	g := testutil.Rec(1,
		"a", testutil.List(2, testutil.Int(1)),
		"b", testutil.Ref(2),
	)

	got, err := Materialize(g)
	require.NoError(t, err)
	rec := got.(map[string]any)

	a := rec["a"].([]any)
	b := rec["b"].([]any)
	assert.Equal(t, reflect.ValueOf(a).Pointer(), reflect.ValueOf(b).Pointer(),
		"both fields must share one slice")
}

func TestMaterialize_RefBeforeDirectOccurrence(t *testing.T) {
	// The reference appears before the anchored node in document order;
	// resolution through the index must still yield a single value.
	g := testutil.Rec(1,
		"first", testutil.Ref(2),
		"second", testutil.Rec(2, "x", testutil.Int(1)),
	)

	got, err := Materialize(g)
	require.NoError(t, err)
	rec := got.(map[string]any)

	first := rec["first"].(map[string]any)
	second := rec["second"].(map[string]any)
	assert.Equal(t, reflect.ValueOf(first).Pointer(), reflect.ValueOf(second).Pointer())
}

func TestMaterialize_CyclicGraph(t *testing.T) {
	g := testutil.Rec(1, "self", testutil.Ref(1))

	got, err := Materialize(g)
	require.NoError(t, err)
	rec := got.(map[string]any)

	inner := rec["self"].(map[string]any)
	assert.Equal(t, reflect.ValueOf(rec).Pointer(), reflect.ValueOf(inner).Pointer(),
		"cycle must come back genuinely self-referential")
}

func TestMaterialize_DonorPrecedence(t *testing.T) {
	root := testutil.Rec(0,
		"mine", testutil.List(1, testutil.Int(1)),
		"r", testutil.Ref(1),
	)
	donor := testutil.List(1, testutil.Int(99))

	got, err := Materialize(root, donor)
	require.NoError(t, err)
	rec := got.(map[string]any)

	// Root's own anchor 1 wins over the donor's.
	assert.Equal(t, []any{int64(1)}, rec["r"])
}

func TestMaterialize_UnresolvedRefIsFatal(t *testing.T) {
	g := testutil.Rec(0, "r", testutil.Ref(77))

	_, err := Materialize(g)
	require.Error(t, err)
	assert.True(t, IsUnresolvedRefError(err))

	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, []OrphanRef{{Path: "$.r", ID: 77}}, ge.Orphans)
}

func TestMaterializeAll_AliasingAcrossRoots(t *testing.T) {
	args := testutil.Tuple(1, testutil.List(2, testutil.Int(1)))
	kwargs := testutil.Rec(3, "xs", testutil.Ref(2))

	vals, err := MaterializeAll([]graph.Node{args, kwargs})
	require.NoError(t, err)
	require.Len(t, vals, 2)

	fromArgs := vals[0].(graph.TupleValue)[0].([]any)
	fromKwargs := vals[1].(map[string]any)["xs"].([]any)
	assert.Equal(t, reflect.ValueOf(fromArgs).Pointer(), reflect.ValueOf(fromKwargs).Pointer())
}

func TestMaterialize_RoundTripsCapture(t *testing.T) {
	// For acyclic, unaliased values in the materialized vocabulary,
	// materializing a capture gives the value back unchanged. Set and
	// map inputs are listed in their canonical order, since capture
	// sorts them.
	tests := []struct {
		name  string
		value any
	}{
		{"scalar list", []any{nil, true, int64(3), 1.5, "hi", []byte{1, 2}}},
		{"nested lists", []any{int64(1), []any{int64(2), []any{}}}},
		{"record", map[string]any{"a": int64(1), "b": []any{int64(2)}}},
		{"tuple", graph.TupleValue{int64(1), "a"}},
		{"set", &graph.SetValue{Elems: []any{int64(1), int64(2)}, Frozen: true}},
		{"keyed map", &graph.MapValue{Pairs: [][2]any{{int64(1), "one"}, {int64(2), "two"}}}},
		{"mixed", map[string]any{
			"t": graph.TupleValue{"x", []any{int64(9)}},
			"s": &graph.SetValue{Elems: []any{"a", "b"}},
			"m": &graph.MapValue{Pairs: [][2]any{{int64(0), nil}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Materialize(capture.Capture(tt.value, 10))
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMaterializeAll_NilRootStaysNil(t *testing.T) {
	vals, err := MaterializeAll([]graph.Node{nil, graph.Int(1)})
	require.NoError(t, err)
	assert.Nil(t, vals[0])
	assert.Equal(t, int64(1), vals[1])
}
