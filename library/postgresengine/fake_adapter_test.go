package postgresengine

import (
	"context"
	"fmt"

	"github.com/librarium/library-service-go/library/postgresengine/internal/adapters"
)

// fakeDB is a scripted stand-in for the database adapter. Query and Exec pop
// queued responses in order and record every statement they saw, so a test can
// assert the exact store conversation of one operation without a live
// database.
type fakeDB struct {
	queryResponses []queryResponse
	execResponses  []execResponse

	queries []string
	execs   []string

	beginErr  error
	commitErr error

	begins    int
	commits   int
	rollbacks int
}

type queryResponse struct {
	rows [][]any
	err  error
}

type execResponse struct {
	affected int64
	err      error
}

func (f *fakeDB) onQuery(rows ...[]any) *fakeDB {
	f.queryResponses = append(f.queryResponses, queryResponse{rows: rows})
	return f
}

func (f *fakeDB) onQueryErr(err error) *fakeDB {
	f.queryResponses = append(f.queryResponses, queryResponse{err: err})
	return f
}

func (f *fakeDB) onExec(affected int64) *fakeDB {
	f.execResponses = append(f.execResponses, execResponse{affected: affected})
	return f
}

func (f *fakeDB) onExecErr(err error) *fakeDB {
	f.execResponses = append(f.execResponses, execResponse{err: err})
	return f
}

func (f *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)

	if len(f.queryResponses) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}

	response := f.queryResponses[0]
	f.queryResponses = f.queryResponses[1:]

	if response.err != nil {
		return nil, response.err
	}

	return &fakeRows{rows: response.rows}, nil
}

func (f *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.execs = append(f.execs, query)

	if len(f.execResponses) == 0 {
		return nil, fmt.Errorf("unexpected exec: %s", query)
	}

	response := f.execResponses[0]
	f.execResponses = f.execResponses[1:]

	if response.err != nil {
		return nil, response.err
	}

	return fakeResult{affected: response.affected}, nil
}

func (f *fakeDB) BeginTx(_ context.Context) (adapters.DBTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}

	f.begins++

	return &fakeTx{db: f}, nil
}

type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Query(ctx context.Context, query string) (adapters.DBRows, error) {
	return t.db.Query(ctx, query)
}

func (t *fakeTx) Exec(ctx context.Context, query string) (adapters.DBResult, error) {
	return t.db.Exec(ctx, query)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.db.commitErr != nil {
		return t.db.commitErr
	}

	t.db.commits++

	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.db.rollbacks++
	return nil
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]

	if len(dest) != len(row) {
		return fmt.Errorf("scan expects %d destinations, got %d", len(row), len(dest))
	}

	for i, target := range dest {
		switch pointer := target.(type) {
		case *int64:
			*pointer = row[i].(int64)
		case *int:
			*pointer = row[i].(int)
		case *string:
			*pointer = row[i].(string)
		case *float64:
			*pointer = row[i].(float64)
		default:
			return fmt.Errorf("unsupported scan destination %T", target)
		}
	}

	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult struct {
	affected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}

// newFakeLibrary wires a Library directly onto the scripted adapter.
func newFakeLibrary(db *fakeDB) Library {
	lib, err := newLibrary(db)
	if err != nil {
		panic(err)
	}

	return lib
}

func existsRow() []any {
	return []any{int64(1)}
}
