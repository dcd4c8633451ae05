// Package capture walks arbitrary runtime values and emits anchored
// graphs.
//
// Every composite value (struct, map, slice, array, pointer target, set,
// tuple) is assigned a positive anchor the first time it is encountered
// within one Capture call; revisiting the same value (by identity, not by
// equality) yields a reference node instead of recursing again. This is
// what makes cyclic inputs safe and aliasing explicit in the output.
//
// Capture never fails: values that cannot be represented degrade to
// textual placeholders, and a panic while reading a single field is
// recorded as a sentinel string without aborting the walk.
package capture
