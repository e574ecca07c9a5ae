package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marketmagic/market-ingest-go/storage"
)

// fakeRow satisfies pgx.Row for the transaction fake below.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("fakeRow: %d dests for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int32:
			*v = r.vals[i].(int32)
		case *bool:
			*v = r.vals[i].(bool)
		default:
			return fmt.Errorf("fakeRow: unsupported scan dest %T", d)
		}
	}
	return nil
}

// fakeTx stands in for one batch transaction. Reference-table lookups resolve
// against an in-memory label map; data-table statements replay the scripted
// responses in order. The embedded interface covers the pgx.Tx methods no
// handler touches.
type fakeTx struct {
	pgx.Tx

	refs    map[string]int32
	nextRef int32
	writes  []fakeRow

	committed  bool
	rolledBack bool
}

func newFakeTx(writes ...fakeRow) *fakeTx {
	return &fakeTx{refs: make(map[string]int32), writes: writes}
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.HasPrefix(sql, "SELECT id FROM"):
		label := args[0].(string)
		if id, ok := t.refs[label]; ok {
			return fakeRow{vals: []any{id}}
		}
		return fakeRow{err: pgx.ErrNoRows}
	case strings.HasPrefix(sql, "INSERT INTO news_sources"),
		strings.HasPrefix(sql, "INSERT INTO social_media_platforms"),
		strings.HasPrefix(sql, "INSERT INTO model_versions"):
		label := args[0].(string)
		t.nextRef++
		t.refs[label] = t.nextRef
		return fakeRow{vals: []any{t.nextRef}}
	}
	if len(t.writes) == 0 {
		return fakeRow{err: fmt.Errorf("fakeTx: no scripted response")}
	}
	row := t.writes[0]
	t.writes = t.writes[1:]
	return row
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeStore hands out one scripted transaction per Begin, so multi-group
// ingestions get one fake per group.
type fakeStore struct {
	txs []*fakeTx
}

func (s *fakeStore) Begin(ctx context.Context) (*storage.Batch, error) {
	if len(s.txs) == 0 {
		return nil, fmt.Errorf("fakeStore: no transaction scripted")
	}
	tx := s.txs[0]
	s.txs = s.txs[1:]
	return storage.NewBatch(tx), nil
}
