package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"civicdesk/internal/protocol/models"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/platform/tx"
)

// Postgres allocates numbers from an explicit per-day counter row. The
// INSERT ... ON CONFLICT DO UPDATE takes a row lock on the day's counter, so
// concurrent allocations for the same day queue on that row and each reads a
// distinct value. No scan over protocol rows is needed.
type Postgres struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewPostgres builds the counter-backed generator. lockTimeout bounds the
// wait for the counter row; exceeding it surfaces as sentinel.ErrLockTimeout.
func NewPostgres(db *sql.DB, lockTimeout time.Duration) *Postgres {
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	return &Postgres{db: db, lockTimeout: lockTimeout}
}

const allocateQuery = `
	INSERT INTO protocol_counters (day, seq)
	VALUES ($1, 1)
	ON CONFLICT (day) DO UPDATE SET seq = protocol_counters.seq + 1
	RETURNING seq
`

func (g *Postgres) Next(ctx context.Context, now time.Time) (string, error) {
	q := tx.Executor(ctx, g.db)

	if _, inTx := tx.From(ctx); inTx {
		// SET LOCAL scopes the lock budget to the enclosing transaction, so
		// a queued allocation fails fast instead of holding the caller past
		// its budget.
		timeoutMillis := g.lockTimeout.Milliseconds()
		if _, err := q.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeoutMillis)); err != nil {
			return "", fmt.Errorf("set lock timeout: %w", err)
		}
	}

	var seq int
	if err := q.QueryRowContext(ctx, allocateQuery, models.DayKey(now)).Scan(&seq); err != nil {
		return "", classifyAllocateError(err)
	}
	return models.FormatNumber(now, seq), nil
}

func classifyAllocateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("allocate protocol number: %w", sentinel.ErrLockTimeout)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03", "57014": // lock_not_available, query_canceled
			return fmt.Errorf("allocate protocol number: %w", sentinel.ErrLockTimeout)
		case "40001": // serialization_failure
			return fmt.Errorf("allocate protocol number: %w", sentinel.ErrConflict)
		}
	}
	return fmt.Errorf("allocate protocol number: %w", err)
}
