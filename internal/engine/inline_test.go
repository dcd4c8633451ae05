package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/testutil"
)

func TestInlineExternalRefs_CopiesDonorSubgraph(t *testing.T) {
	expected := testutil.Rec(0, "payload", testutil.Ref(5))
	donor := testutil.List(5, testutil.Int(1), testutil.Int(2))

	got := InlineExternalRefs(expected, donor)

	want := testutil.Rec(0, "payload",
		&graph.List{Elems: []graph.Node{graph.Int(1), graph.Int(2)}})
	assert.Equal(t, want, got)

	// The donor keeps its anchor; only the copy is stripped.
	assert.Equal(t, 5, donor.ID)
}

func TestInlineExternalRefs_InternalAliasingUntouched(t *testing.T) {
	expected := testutil.List(1,
		testutil.List(2, testutil.Int(1)),
		testutil.Ref(2),
	)
	got := InlineExternalRefs(expected, testutil.List(2, testutil.Int(99)))
	// Anchor 2 exists inside expected, so the reference is true internal
	// aliasing and must not be replaced by the donor's anchor 2.
	assert.Equal(t, expected, got)
}

func TestInlineExternalRefs_Transitive(t *testing.T) {
	expected := testutil.Ref(5)
	donorA := testutil.List(5, testutil.Ref(6))
	donorB := testutil.List(6, testutil.Str("deep"))

	got := InlineExternalRefs(expected, donorA, donorB)

	want := &graph.List{Elems: []graph.Node{
		&graph.List{Elems: []graph.Node{graph.Str("deep")}},
	}}
	assert.Equal(t, want, got)
}

func TestInlineExternalRefs_UnresolvableRefKept(t *testing.T) {
	expected := testutil.Rec(0, "r", testutil.Ref(42))
	got := InlineExternalRefs(expected)
	assert.Equal(t, expected, got)
}

func TestInlineExternalRefs_CyclicDonorTerminates(t *testing.T) {
	// Donor 5 contains a back-edge to itself; re-entry stays a reference.
	donor := testutil.List(5, testutil.Ref(5))
	got := InlineExternalRefs(testutil.Ref(5), donor)

	want := &graph.List{Elems: []graph.Node{&graph.Ref{Target: 5}}}
	assert.Equal(t, want, got)
}
