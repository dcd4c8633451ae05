// Package graph defines the anchored intermediate representation for
// captured object graphs.
//
// This package contains the node vocabulary, the reserved-key JSON codec,
// and the canonical text form. All other internal packages import graph;
// graph imports nothing internal. This keeps the IR the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - Anchors are positive integers assigned in first-encounter order;
//     an ID of 0 means "unanchored" (the rendered surface).
//   - Reserved wire keys: id, ref, list, tuple, set, frozen, map.
//   - Composite nodes are immutable by convention once built; every
//     transformation returns a fresh tree.
package graph
