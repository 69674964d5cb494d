package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civicdesk/internal/protocol/models"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/platform/tx"
)

// PostgresProtocolStore persists protocols in PostgreSQL. All methods run on
// the ambient transaction when one is carried by ctx.
type PostgresProtocolStore struct {
	db *sql.DB
}

func NewPostgresProtocolStore(db *sql.DB) *PostgresProtocolStore {
	return &PostgresProtocolStore{db: db}
}

const protocolColumns = `id, number, status, service_ref, module_type, requester_ref, assigned_to, created_at, concluded_at`

func (s *PostgresProtocolStore) Create(ctx context.Context, p *models.Protocol) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO protocols (`+protocolColumns+`)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9)`,
		p.ID, p.Number, p.Status, p.ServiceRef, p.ModuleType, p.RequesterRef, p.AssignedTo, p.CreatedAt, p.ConcludedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("protocol %s: %w", p.Number, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert protocol: %w", err)
	}
	return nil
}

func (s *PostgresProtocolStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Protocol, error) {
	q := tx.Executor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+protocolColumns+` FROM protocols WHERE id = $1`, id)
	return scanProtocol(row)
}

func (s *PostgresProtocolStore) GetByNumber(ctx context.Context, number string) (*models.Protocol, error) {
	q := tx.Executor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+protocolColumns+` FROM protocols WHERE number = $1`, number)
	return scanProtocol(row)
}

func (s *PostgresProtocolStore) Update(ctx context.Context, p *models.Protocol) error {
	q := tx.Executor(ctx, s.db)

	res, err := q.ExecContext(ctx, `
		UPDATE protocols
		SET status = $2, assigned_to = NULLIF($3, ''), concluded_at = $4
		WHERE id = $1`,
		p.ID, p.Status, p.AssignedTo, p.ConcludedAt,
	)
	if err != nil {
		return fmt.Errorf("update protocol: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update protocol: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProtocolStore) ListByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error) {
	return s.list(ctx, `
		SELECT `+protocolColumns+` FROM protocols
		WHERE module_type = $1
		ORDER BY created_at, number`, moduleType)
}

func (s *PostgresProtocolStore) ListPendingByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error) {
	return s.list(ctx, `
		SELECT `+protocolColumns+` FROM protocols
		WHERE module_type = $1 AND status NOT IN ('completed', 'rejected')
		ORDER BY created_at, number`, moduleType)
}

func (s *PostgresProtocolStore) list(ctx context.Context, query string, args ...any) ([]*models.Protocol, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	defer rows.Close()

	var out []*models.Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresProtocolStore) Stats(ctx context.Context) (*Stats, error) {
	q := tx.Executor(ctx, s.db)

	stats := &Stats{
		ByStatus: make(map[models.Status]int),
		ByModule: make(map[string]int),
	}

	rows, err := q.QueryContext(ctx, `
		SELECT status, COALESCE(module_type, ''), COUNT(*)
		FROM protocols
		GROUP BY status, module_type`)
	if err != nil {
		return nil, fmt.Errorf("protocol stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status     models.Status
			moduleType string
			count      int
		)
		if err := rows.Scan(&status, &moduleType, &count); err != nil {
			return nil, fmt.Errorf("protocol stats: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		if moduleType != "" {
			stats.ByModule[moduleType] += count
		}
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProtocol(row rowScanner) (*models.Protocol, error) {
	var (
		p          models.Protocol
		moduleType sql.NullString
		assignedTo sql.NullString
	)
	err := row.Scan(&p.ID, &p.Number, &p.Status, &p.ServiceRef, &moduleType, &p.RequesterRef, &assignedTo, &p.CreatedAt, &p.ConcludedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan protocol: %w", err)
	}
	p.ModuleType = moduleType.String
	p.AssignedTo = assignedTo.String
	p.CreatedAt = p.CreatedAt.UTC()
	if p.ConcludedAt != nil {
		t := p.ConcludedAt.UTC()
		p.ConcludedAt = &t
	}
	return &p, nil
}

// PostgresHistoryStore persists protocol history rows.
type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, e *models.HistoryEntry) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO protocol_history (id, protocol_id, action, old_status, new_status, comment, actor_ref, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`,
		e.ID, e.ProtocolID, e.Action, e.OldStatus, e.NewStatus, e.Comment, e.ActorRef, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.HistoryEntry, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, protocol_id, action, COALESCE(old_status, ''), COALESCE(new_status, ''),
		       COALESCE(comment, ''), COALESCE(actor_ref, ''), created_at
		FROM protocol_history
		WHERE protocol_id = $1
		ORDER BY created_at`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.ProtocolID, &e.Action, &e.OldStatus, &e.NewStatus, &e.Comment, &e.ActorRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}
