package harness

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/retrace/internal/capture"
	"github.com/roach88/retrace/internal/graph"
	"github.com/roach88/retrace/internal/store"
)

// Recorder captures calls and persists them as store entries.
type Recorder struct {
	Store    *store.Store
	MaxDepth int
	Logger   *slog.Logger

	// EntryID, when set, names the next entry instead of letting the
	// store assign one. Used by tests that need stable ids.
	EntryID func() string

	seq atomic.Int64
}

// NewRecorder returns a Recorder writing to s with default capture depth.
func NewRecorder(s *store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{Store: s, MaxDepth: capture.DefaultMaxDepth, Logger: logger}
}

// Record captures one call and writes it to the store. Arguments,
// keyword arguments and the result are walked in a single shared pass,
// so anchors number across all three and a result that aliases an
// argument becomes a reference into the argument graph.
//
// Record never propagates failure to the recorded call: on any error
// it logs and returns the empty id.
func (r *Recorder) Record(ctx context.Context, funcName string, args []any, kwargs map[string]any, result any) string {
	c := capture.New()
	if r.MaxDepth > 0 {
		c.MaxDepth = r.MaxDepth
	}

	nodes := c.CaptureAll(graph.TupleValue(args), kwargs, result)

	entry := store.Entry{
		Func:   funcName,
		Args:   nodes[0],
		Kwargs: nodes[1],
		Result: nodes[2],
		Seq:    r.seq.Add(1),
	}
	if r.EntryID != nil {
		entry.ID = r.EntryID()
	}

	id, err := r.Store.WriteEntry(ctx, entry)
	if err != nil {
		r.Logger.Warn("dropping entry", "func", funcName, "err", err)
		return ""
	}
	r.Logger.Debug("recorded entry", "func", funcName, "entry", id)
	return id
}
