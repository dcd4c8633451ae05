package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqEntryIDs(t *testing.T) {
	next := SeqEntryIDs("rec")
	assert.Equal(t, "rec-0001", next())
	assert.Equal(t, "rec-0002", next())

	// Independent sequences don't share state.
	other := SeqEntryIDs("rec")
	assert.Equal(t, "rec-0001", other())

	unnamed := SeqEntryIDs("")
	assert.Equal(t, "test-entry-0001", unnamed())
}
