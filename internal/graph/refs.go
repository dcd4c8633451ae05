package graph

import "fmt"

// Anchors collects every anchor id reachable in n, including anchors
// inside map pairs and set elements, into ids.
func Anchors(n Node, ids map[int]struct{}) {
	if id := AnchorID(n); id > 0 {
		ids[id] = struct{}{}
	}
	switch v := n.(type) {
	case *Record:
		for _, f := range v.Fields {
			Anchors(f.Value, ids)
		}
	case *List:
		for _, e := range v.Elems {
			Anchors(e, ids)
		}
	case *Tuple:
		for _, e := range v.Elems {
			Anchors(e, ids)
		}
	case *Set:
		for _, e := range v.Elems {
			Anchors(e, ids)
		}
	case *Map:
		for _, p := range v.Pairs {
			Anchors(p.Key, ids)
			Anchors(p.Value, ids)
		}
	}
}

// AnchorSet returns the set of anchor ids reachable in the given graphs.
func AnchorSet(graphs ...Node) map[int]struct{} {
	ids := make(map[int]struct{})
	for _, g := range graphs {
		if g != nil {
			Anchors(g, ids)
		}
	}
	return ids
}

// Index adds every anchored node reachable in n to idx, keyed by anchor
// id. The first writer for a given id wins; callers control precedence by
// indexing graphs in preference order.
func Index(n Node, idx map[int]Node) {
	if id := AnchorID(n); id > 0 {
		if _, ok := idx[id]; !ok {
			idx[id] = n
		}
	}
	switch v := n.(type) {
	case *Record:
		for _, f := range v.Fields {
			Index(f.Value, idx)
		}
	case *List:
		for _, e := range v.Elems {
			Index(e, idx)
		}
	case *Tuple:
		for _, e := range v.Elems {
			Index(e, idx)
		}
	case *Set:
		for _, e := range v.Elems {
			Index(e, idx)
		}
	case *Map:
		for _, p := range v.Pairs {
			Index(p.Key, idx)
			Index(p.Value, idx)
		}
	}
}

// WalkRefs visits every reference node reachable in n, in document order,
// with a JSONPath-like location string. Paths use dot/bracket notation
// with .map[i].key / .map[i].value / .set[i] suffixes for the special
// containers.
func WalkRefs(n Node, visit func(path string, id int)) {
	walkRefs(n, "$", visit)
}

func walkRefs(n Node, path string, visit func(path string, id int)) {
	switch v := n.(type) {
	case *Ref:
		visit(path, v.Target)
	case *Record:
		for _, f := range v.Fields {
			walkRefs(f.Value, path+"."+f.Name, visit)
		}
	case *List:
		for i, e := range v.Elems {
			walkRefs(e, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	case *Tuple:
		for i, e := range v.Elems {
			walkRefs(e, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	case *Set:
		for i, e := range v.Elems {
			walkRefs(e, fmt.Sprintf("%s.set[%d]", path, i), visit)
		}
	case *Map:
		for i, p := range v.Pairs {
			walkRefs(p.Key, fmt.Sprintf("%s.map[%d].key", path, i), visit)
			walkRefs(p.Value, fmt.Sprintf("%s.map[%d].value", path, i), visit)
		}
	}
}
