package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorSet_CollectsNestedAnchors(t *testing.T) {
	g := &Record{ID: 1, Fields: []Field{
		{"xs", &List{ID: 2, Elems: []Node{
			&Tuple{ID: 3, Elems: []Node{Int(1)}},
		}}},
		{"s", &Set{ID: 4, Elems: []Node{&Map{ID: 5}}}},
		{"plain", Int(7)},
	}}

	ids := AnchorSet(g)
	assert.Equal(t, map[int]struct{}{
		1: {}, 2: {}, 3: {}, 4: {}, 5: {},
	}, ids)
}

func TestAnchorSet_SkipsNilAndUnanchored(t *testing.T) {
	ids := AnchorSet(nil, &List{Elems: []Node{Int(1)}}, Str("x"))
	assert.Empty(t, ids)
}

func TestIndex_FirstWriterWins(t *testing.T) {
	first := &List{ID: 1, Elems: []Node{Int(1)}}
	second := &List{ID: 1, Elems: []Node{Int(2)}}

	idx := make(map[int]Node)
	Index(first, idx)
	Index(second, idx)

	assert.Same(t, first, idx[1])
}

func TestWalkRefs_Paths(t *testing.T) {
	g := &Record{ID: 1, Fields: []Field{
		{"r", &Ref{Target: 9}},
		{"xs", &List{ID: 2, Elems: []Node{&Ref{Target: 8}}}},
		{"t", &Tuple{Elems: []Node{Int(0), &Ref{Target: 7}}}},
		{"s", &Set{Elems: []Node{&Ref{Target: 6}}}},
		{"m", &Map{Pairs: []Pair{{&Ref{Target: 5}, &Ref{Target: 4}}}}},
	}}

	type hit struct {
		path string
		id   int
	}
	var hits []hit
	WalkRefs(g, func(path string, id int) {
		hits = append(hits, hit{path, id})
	})

	assert.Equal(t, []hit{
		{"$.r", 9},
		{"$.xs[0]", 8},
		{"$.t[1]", 7},
		{"$.s.set[0]", 6},
		{"$.m.map[0].key", 5},
		{"$.m.map[0].value", 4},
	}, hits)
}
