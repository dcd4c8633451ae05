package engine

import (
	"fmt"

	"github.com/roach88/retrace/internal/graph"
)

// Materialize reconstructs a plain runtime value tree from an anchored
// graph, resolving every reference through a single anchor index built
// over root and the donors. The index prefers root's own anchors, then
// donors in argument order (callers pass [args, kwargs], giving the
// documented result > args > kwargs precedence on id collisions).
//
// Each anchor is materialized at most once; repeated references reuse the
// same built value, which restores aliasing identity in the output even
// though the serialized form carries none. Containers are memoized before
// their children are filled, so cyclic graphs come back as genuinely
// self-referential values.
//
// A reference absent from the anchor index is a fatal error: the result
// feeds the assertion/execution path, so materialization fully succeeds
// or fails loudly. Inputs are never mutated.
func Materialize(root graph.Node, donors ...graph.Node) (any, error) {
	idx := make(map[int]graph.Node)
	graph.Index(root, idx)
	for _, d := range donors {
		if d != nil {
			graph.Index(d, idx)
		}
	}
	mz := &materializer{index: idx, memo: make(map[int]any)}
	return mz.build(root, "$")
}

// MaterializeAll rebuilds several graphs with one shared anchor index
// and memo, so aliasing between the roots survives (an anchor built for
// one root is reused when another root references it). Index precedence
// follows root order, then donors.
func MaterializeAll(roots []graph.Node, donors ...graph.Node) ([]any, error) {
	idx := make(map[int]graph.Node)
	for _, r := range roots {
		if r != nil {
			graph.Index(r, idx)
		}
	}
	for _, d := range donors {
		if d != nil {
			graph.Index(d, idx)
		}
	}
	mz := &materializer{index: idx, memo: make(map[int]any)}
	out := make([]any, len(roots))
	for i, r := range roots {
		if r == nil {
			continue
		}
		v, err := mz.build(r, "$")
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type materializer struct {
	index map[int]graph.Node
	memo  map[int]any
}

func (mz *materializer) build(n graph.Node, path string) (any, error) {
	// An anchor already materialized (directly or through a reference)
	// is reused as-is; this is what preserves aliasing in the output.
	if id := graph.AnchorID(n); id > 0 {
		if val, ok := mz.memo[id]; ok {
			return val, nil
		}
	}

	switch v := n.(type) {
	case nil, graph.Null:
		return nil, nil
	case graph.Bool:
		return bool(v), nil
	case graph.Int:
		return int64(v), nil
	case graph.Float:
		return float64(v), nil
	case graph.Str:
		return string(v), nil
	case graph.Bytes:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil

	case *graph.Ref:
		return mz.resolve(v.Target, path)

	case *graph.Record:
		out := make(map[string]any, len(v.Fields))
		mz.memoize(v.ID, out)
		for _, f := range v.Fields {
			child, err := mz.build(f.Value, path+"."+f.Name)
			if err != nil {
				return nil, err
			}
			out[f.Name] = child
		}
		return out, nil

	case *graph.List:
		out := make([]any, len(v.Elems))
		mz.memoize(v.ID, out)
		if err := mz.fill(out, v.Elems, path); err != nil {
			return nil, err
		}
		return out, nil

	case *graph.Tuple:
		out := make(graph.TupleValue, len(v.Elems))
		mz.memoize(v.ID, out)
		if err := mz.fill(out, v.Elems, path); err != nil {
			return nil, err
		}
		return out, nil

	case *graph.Set:
		out := &graph.SetValue{Frozen: v.Frozen, Elems: make([]any, len(v.Elems))}
		mz.memoize(v.ID, out)
		for i, e := range v.Elems {
			child, err := mz.build(e, fmt.Sprintf("%s.set[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out.Elems[i] = child
		}
		return out, nil

	case *graph.Map:
		out := &graph.MapValue{Pairs: make([][2]any, len(v.Pairs))}
		mz.memoize(v.ID, out)
		for i, p := range v.Pairs {
			key, err := mz.build(p.Key, fmt.Sprintf("%s.map[%d].key", path, i))
			if err != nil {
				return nil, err
			}
			val, err := mz.build(p.Value, fmt.Sprintf("%s.map[%d].value", path, i))
			if err != nil {
				return nil, err
			}
			out.Pairs[i] = [2]any{key, val}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown node type %T at %s", n, path)
	}
}

func (mz *materializer) fill(out []any, elems []graph.Node, path string) error {
	for i, e := range elems {
		child, err := mz.build(e, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return err
		}
		out[i] = child
	}
	return nil
}

func (mz *materializer) memoize(id int, val any) {
	if id > 0 {
		if _, ok := mz.memo[id]; !ok {
			mz.memo[id] = val
		}
	}
}

func (mz *materializer) resolve(id int, path string) (any, error) {
	if val, ok := mz.memo[id]; ok {
		return val, nil
	}
	target, ok := mz.index[id]
	if !ok {
		return nil, NewUnresolvedRefError(path, id)
	}
	return mz.build(target, path)
}
