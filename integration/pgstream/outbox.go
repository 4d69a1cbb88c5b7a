package pgstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/streamkit"
	"github.com/dmitrymomot/streamkit/core/logger"
)

// DefaultPollInterval is how long the outbox poller sleeps after finding no
// undelivered rows.
const DefaultPollInterval = time.Second

// DefaultBatchSize caps how many rows one poll may claim.
const DefaultBatchSize = 64

// OutboxRecord is one event row claimed from the outbox table.
type OutboxRecord struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	enqueueQuery = `INSERT INTO streamkit_outbox (topic, payload) VALUES ($1, $2)`

	// Claiming marks rows delivered in the same statement that selects
	// them, with SKIP LOCKED keeping concurrent pollers off each other's
	// rows.
	claimQuery = `
		WITH claimed AS (
			UPDATE streamkit_outbox
			SET delivered_at = now()
			WHERE id IN (
				SELECT id FROM streamkit_outbox
				WHERE delivered_at IS NULL
				ORDER BY id
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, topic, payload, created_at
		)
		SELECT id, topic, payload, created_at FROM claimed ORDER BY id`

	claimTopicQuery = `
		WITH claimed AS (
			UPDATE streamkit_outbox
			SET delivered_at = now()
			WHERE id IN (
				SELECT id FROM streamkit_outbox
				WHERE delivered_at IS NULL AND topic = $2
				ORDER BY id
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, topic, payload, created_at
		)
		SELECT id, topic, payload, created_at FROM claimed ORDER BY id`
)

// Enqueue appends one record to the outbox. When ctx carries a transaction
// attached with WithTx, the insert joins it, making the outbox write atomic
// with the caller's domain writes. The payload is stored as JSON.
func Enqueue(ctx context.Context, db Execer, topic string, payload any) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}

	if tx, ok := TxFromContext(ctx); ok {
		db = tx
	}
	if _, err := db.Exec(ctx, enqueueQuery, topic, data); err != nil {
		return errors.Join(ErrEnqueueFailed, err)
	}
	return nil
}

// Outbox is a cold Publisher over undelivered rows of the streamkit_outbox
// table. Each poll claims at most as many rows as the subscriber currently
// demands, marks them delivered, and emits them in insertion order; when the
// table is drained the poller sleeps for the poll interval and tries again.
//
// A subscriber that stops requesting stops the polling; rows stay in the
// table instead of piling up in memory. Multiple subscribers, or multiple
// processes, divide the rows between them: the claim uses SKIP LOCKED, so
// every row is delivered to exactly one of them.
type Outbox struct {
	db       Querier
	topic    string
	batch    int
	interval time.Duration
	logger   *slog.Logger
}

// OutboxOption configures an Outbox. Invalid values are ignored.
type OutboxOption func(*Outbox)

// WithTopic restricts the poller to rows with the given topic. Empty topics
// are ignored.
func WithTopic(topic string) OutboxOption {
	return func(o *Outbox) {
		if topic != "" {
			o.topic = topic
		}
	}
}

// WithBatchSize caps how many rows one poll may claim. Non-positive sizes
// are ignored.
func WithBatchSize(size int) OutboxOption {
	return func(o *Outbox) {
		if size > 0 {
			o.batch = size
		}
	}
}

// WithPollInterval sets the sleep between polls that find no rows.
// Non-positive intervals are ignored.
func WithPollInterval(interval time.Duration) OutboxOption {
	return func(o *Outbox) {
		if interval > 0 {
			o.interval = interval
		}
	}
}

// WithOutboxLogger sets the logger for poll diagnostics. Nil loggers are
// ignored.
func WithOutboxLogger(log *slog.Logger) OutboxOption {
	return func(o *Outbox) {
		if log != nil {
			o.logger = log
		}
	}
}

// NewOutbox creates a poller reading from db, which is typically the
// application's pgxpool.Pool.
func NewOutbox(db Querier, opts ...OutboxOption) *Outbox {
	o := &Outbox{
		db:       db,
		batch:    DefaultBatchSize,
		interval: DefaultPollInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Subscribe implements streamkit.Publisher. Polling starts with the first
// positive request and claims at most the outstanding demand per round
// trip.
func (o *Outbox) Subscribe(downstream streamkit.Subscriber[OutboxRecord]) streamkit.Flow {
	src := streamkit.FromBatchFunc(func(ctx context.Context, limit int) ([]OutboxRecord, error) {
		records, err := o.claim(ctx, limit)
		if err != nil {
			return nil, errors.Join(ErrClaimFailed, err)
		}
		if len(records) == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.interval):
			}
			return nil, nil
		}
		return records, nil
	}, o.batch)
	return src.Subscribe(downstream)
}

// claim marks up to limit undelivered rows delivered and returns them in
// insertion order.
func (o *Outbox) claim(ctx context.Context, limit int) ([]OutboxRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if o.topic == "" {
		rows, err = o.db.Query(ctx, claimQuery, limit)
	} else {
		rows, err = o.db.Query(ctx, claimTopicQuery, limit, o.topic)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var r OutboxRecord
		if err := rows.Scan(&r.ID, &r.Topic, &r.Payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) > 0 {
		o.logger.DebugContext(ctx, "outbox rows claimed",
			logger.Component("pgstream"),
			logger.Count("rows", len(records)),
		)
	}
	return records, nil
}
