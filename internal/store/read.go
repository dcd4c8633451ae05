package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no entry exists for the requested id.
var ErrNotFound = errors.New("entry not found")

// ReadEntry returns the entry with the given id.
func (s *Store) ReadEntry(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, func, args_graph, kwargs_graph, result_graph, seq
		FROM entries
		WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, err
}

// ReadByFunc returns every entry recorded for a function, ordered
// deterministically: ORDER BY seq ASC, id ASC.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ReadByFunc(ctx context.Context, funcName string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, func, args_graph, kwargs_graph, result_graph, seq
		FROM entries
		WHERE func = ?
		ORDER BY seq ASC, id ASC
	`, funcName)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ReadAll returns every stored entry ordered by function name, then
// seq, then id.
func (s *Store) ReadAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, func, args_graph, kwargs_graph, result_graph, seq
		FROM entries
		ORDER BY func ASC, seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Funcs returns the distinct function names with recorded entries,
// sorted ascending.
func (s *Store) Funcs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT func FROM entries ORDER BY func ASC`)
	if err != nil {
		return nil, fmt.Errorf("query funcs: %w", err)
	}
	defer rows.Close()

	funcs := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan func: %w", err)
		}
		funcs = append(funcs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate funcs: %w", err)
	}
	return funcs, nil
}

// Count returns the total number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var argsJSON, kwargsJSON, resultJSON string
	if err := row.Scan(&e.ID, &e.Func, &argsJSON, &kwargsJSON, &resultJSON, &e.Seq); err != nil {
		return Entry{}, err
	}

	var err error
	if e.Args, err = unmarshalGraph(argsJSON); err != nil {
		return Entry{}, fmt.Errorf("entry %s args: %w", e.ID, err)
	}
	if e.Kwargs, err = unmarshalGraph(kwargsJSON); err != nil {
		return Entry{}, fmt.Errorf("entry %s kwargs: %w", e.ID, err)
	}
	if e.Result, err = unmarshalGraph(resultJSON); err != nil {
		return Entry{}, fmt.Errorf("entry %s result: %w", e.ID, err)
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
