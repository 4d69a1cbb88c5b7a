package pgstream_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/streamkit/integration/pgstream"
)

// fakeExecer records Exec calls and returns a canned command tag.
type fakeExecer struct {
	mu   sync.Mutex
	sql  string
	args []any
	err  error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sql = sql
	f.args = args
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeExecer) lastCall() (string, []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sql, f.args
}

// fakeTx satisfies pgx.Tx for transaction routing checks. Only Exec is
// callable; the embedded interface panics on anything else.
type fakeTx struct {
	pgx.Tx
	exec fakeExecer
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.exec.Exec(ctx, sql, args...)
}

// fakeRows plays back claimed outbox records. Only the methods the poller
// touches are implemented.
type fakeRows struct {
	pgx.Rows
	records []pgstream.OutboxRecord
	idx     int
	scanErr error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	rec := r.records[r.idx-1]
	*(dest[0].(*int64)) = rec.ID
	*(dest[1].(*string)) = rec.Topic
	*(dest[2].(*json.RawMessage)) = rec.Payload
	*(dest[3].(*time.Time)) = rec.CreatedAt
	return nil
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() {}

// fakeQuerier serves queued batches of records, one batch per Query call,
// then empty results. Calls are recorded for inspection.
type fakeQuerier struct {
	mu      sync.Mutex
	queries []string
	argsLog [][]any
	batches [][]pgstream.OutboxRecord
	err     error
	scanErr error
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, sql)
	q.argsLog = append(q.argsLog, args)
	if q.err != nil {
		return nil, q.err
	}
	var batch []pgstream.OutboxRecord
	if len(q.batches) > 0 {
		batch = q.batches[0]
		q.batches = q.batches[1:]
	}
	return &fakeRows{records: batch, scanErr: q.scanErr}, nil
}

func (q *fakeQuerier) calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queries)
}

func (q *fakeQuerier) call(i int) (string, []any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queries[i], q.argsLog[i]
}

func (q *fakeQuerier) limits() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int, 0, len(q.argsLog))
	for _, args := range q.argsLog {
		if n, ok := args[0].(int); ok {
			out = append(out, n)
		}
	}
	return out
}

func outboxRecord(id int64, topic, payload string) pgstream.OutboxRecord {
	return pgstream.OutboxRecord{
		ID:        id,
		Topic:     topic,
		Payload:   json.RawMessage(payload),
		CreatedAt: time.Now().UTC(),
	}
}
