package testutil

import "fmt"

// SeqEntryIDs returns an id generator producing "test-entry-0001",
// "test-entry-0002", ... in sequence.
//
// Recorded entries normally get UUIDv7 ids; fixed ids keep case file
// names and golden snapshots byte-identical across runs.
//
// Thread-safety: the returned func is NOT safe for concurrent use;
// tests record sequentially.
func SeqEntryIDs(prefix string) func() string {
	if prefix == "" {
		prefix = "test-entry"
	}
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%04d", prefix, n)
	}
}
