package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow satisfies pgx.Row for the querier fakes below.
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

type call struct {
	sql  string
	args []any
}

// refDB fakes the reference tables: SELECTs hit an in-memory label map,
// INSERTs assign the next id.
type refDB struct {
	calls   []call
	inserts int
	rows    map[string]int32
	next    int32
}

func newRefDB() *refDB {
	return &refDB{rows: make(map[string]int32)}
}

func (f *refDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql, args})
	return pgconn.CommandTag{}, nil
}

func (f *refDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql, args})
	label := args[0].(string)
	if strings.HasPrefix(sql, "SELECT") {
		if id, ok := f.rows[label]; ok {
			return fakeRow{vals: []any{id}}
		}
		return fakeRow{err: pgx.ErrNoRows}
	}
	f.inserts++
	f.next++
	f.rows[label] = f.next
	return fakeRow{vals: []any{f.next}}
}

// scriptDB replays a fixed sequence of row responses and records every call.
type scriptDB struct {
	calls []call
	rows  []fakeRow
}

func (f *scriptDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql, args})
	return pgconn.CommandTag{}, nil
}

func (f *scriptDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql, args})
	if len(f.rows) == 0 {
		return fakeRow{err: fmt.Errorf("scriptDB: no scripted response")}
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row
}
