// Package harness records live calls into the store and replays them
// against their captured results.
//
// The Recorder is the write side: it captures a call's arguments and
// result in one shared pass, so composites reachable from both sides
// anchor once and reference each other, then persists the entry. It
// never fails the call being recorded; capture or store errors are
// logged and swallowed.
//
// The Replayer is the read side: it rebuilds live argument values from
// an entry's graphs, invokes a function under test, and compares the
// rendered result against the entry's expected graph.
package harness
