package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/retrace/internal/engine"
)

// WriteEntry validates and inserts a recorded entry.
//
// Guardrail: before persisting, the result graph is checked for orphan
// references using the args and kwargs graphs (plus the result graph
// itself, to allow internal aliasing) as donors. If any orphan remains
// the write is refused entirely - no partial row - and the returned
// error carries the JSONPath and id of every orphan.
//
// An empty ID is assigned a fresh UUIDv7, which also gives entries a
// time-ordered total order alongside seq. Duplicate IDs are silently
// ignored (ON CONFLICT DO NOTHING) for idempotent re-recording.
func (s *Store) WriteEntry(ctx context.Context, e Entry) (string, error) {
	if orphans := engine.FindOrphanRefs(e.Result, e.Args, e.Kwargs); len(orphans) > 0 {
		return "", engine.NewOrphanAtWriteError(e.Func, orphans)
	}

	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}

	argsJSON, err := marshalGraph(e.Args)
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}
	kwargsJSON, err := marshalGraph(e.Kwargs)
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}
	resultJSON, err := marshalGraph(e.Result)
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries
		(id, func, args_graph, kwargs_graph, result_graph, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Func,
		argsJSON,
		kwargsJSON,
		resultJSON,
		e.Seq,
	)
	if err != nil {
		return "", fmt.Errorf("write entry: %w", err)
	}

	return e.ID, nil
}

// DeleteFunc removes every entry recorded for the given function.
// Returns the number of entries removed.
func (s *Store) DeleteFunc(ctx context.Context, funcName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE func = ?`, funcName)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete entries: rows affected: %w", err)
	}
	return n, nil
}
