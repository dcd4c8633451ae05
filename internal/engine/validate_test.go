package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/testutil"
)

func TestFindOrphanRefs_InternalAnchorsSatisfy(t *testing.T) {
	g := testutil.List(1,
		testutil.List(2, testutil.Int(1)),
		testutil.Ref(2),
	)
	assert.Empty(t, FindOrphanRefs(g))
}

func TestFindOrphanRefs_DonorsSatisfy(t *testing.T) {
	g := testutil.Rec(0, "r", testutil.Ref(5))
	donor := testutil.List(5, testutil.Int(1))

	assert.Empty(t, FindOrphanRefs(g, donor))
	assert.Equal(t,
		[]OrphanRef{{Path: "$.r", ID: 5}},
		FindOrphanRefs(g))
}

func TestFindOrphanRefs_ReportsEveryOrphanWithPath(t *testing.T) {
	g := testutil.Rec(1,
		"a", testutil.Ref(9),
		"xs", testutil.List(2, testutil.Ref(8), testutil.Ref(1)),
	)
	got := FindOrphanRefs(g)
	assert.Equal(t, []OrphanRef{
		{Path: "$.a", ID: 9},
		{Path: "$.xs[0]", ID: 8},
	}, got)
}

func TestFindOrphanRefs_NilDonorsIgnored(t *testing.T) {
	g := testutil.Rec(0, "r", testutil.Ref(3))
	got := FindOrphanRefs(g, nil, graph.Null{})
	assert.Equal(t, []OrphanRef{{Path: "$.r", ID: 3}}, got)
}

func TestFindLocalOrphanRefs_IgnoresNothing(t *testing.T) {
	g := testutil.List(0, testutil.Ref(2))
	assert.Equal(t, []OrphanRef{{Path: "$[0]", ID: 2}}, FindLocalOrphanRefs(g))
}
