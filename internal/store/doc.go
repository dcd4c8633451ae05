// Package store provides durable storage for recorded call entries.
//
// Each entry holds the three anchored graphs captured for one call:
// positional arguments, keyword arguments, and the result. Graphs are
// persisted as canonical JSON text so stored bytes compare stably.
//
// Writes are guarded: before any bytes reach the database, the result
// graph is validated against its sibling graphs, and an entry with
// orphan references is refused outright. The store never holds a
// partially written entry.
package store
