package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civicdesk/internal/sla/models"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/platform/tx"
)

// Postgres persists SLAs in the protocol_slas table. The unique constraint
// on protocol_id enforces the one-SLA-per-protocol rule.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const slaColumns = `id, protocol_id, start_date, expected_end_date, working_days, calendar_days,
	is_paused, paused_at, COALESCE(paused_reason, ''), total_paused_days,
	actual_end_date, is_overdue, days_overdue, updated_at`

func (s *Postgres) Create(ctx context.Context, sla *models.SLA) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO protocol_slas
			(id, protocol_id, start_date, expected_end_date, working_days, calendar_days,
			 is_paused, paused_at, paused_reason, total_paused_days,
			 actual_end_date, is_overdue, days_overdue, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14)`,
		sla.ID, sla.ProtocolID, sla.StartDate, sla.ExpectedEndDate, sla.WorkingDays, sla.CalendarDays,
		sla.IsPaused, sla.PausedAt, sla.PausedReason, sla.TotalPausedDays,
		sla.ActualEndDate, sla.IsOverdue, sla.DaysOverdue, sla.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("SLA for protocol %s: %w", sla.ProtocolID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert SLA: %w", err)
	}
	return nil
}

func (s *Postgres) GetByProtocol(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error) {
	q := tx.Executor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+slaColumns+` FROM protocol_slas WHERE protocol_id = $1`, protocolID)
	return scanSLA(row)
}

func (s *Postgres) Update(ctx context.Context, sla *models.SLA) error {
	q := tx.Executor(ctx, s.db)

	res, err := q.ExecContext(ctx, `
		UPDATE protocol_slas SET
			expected_end_date = $2,
			calendar_days = $3,
			is_paused = $4,
			paused_at = $5,
			paused_reason = NULLIF($6, ''),
			total_paused_days = $7,
			actual_end_date = $8,
			is_overdue = $9,
			days_overdue = $10,
			updated_at = $11
		WHERE protocol_id = $1`,
		sla.ProtocolID, sla.ExpectedEndDate, sla.CalendarDays, sla.IsPaused, sla.PausedAt, sla.PausedReason,
		sla.TotalPausedDays, sla.ActualEndDate, sla.IsOverdue, sla.DaysOverdue, sla.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update SLA: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update SLA: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteByProtocol(ctx context.Context, protocolID uuid.UUID) error {
	q := tx.Executor(ctx, s.db)

	res, err := q.ExecContext(ctx, `DELETE FROM protocol_slas WHERE protocol_id = $1`, protocolID)
	if err != nil {
		return fmt.Errorf("delete SLA: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete SLA: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*models.SLA, error) {
	return s.listWhere(ctx, `WHERE actual_end_date IS NULL`)
}

func (s *Postgres) List(ctx context.Context) ([]*models.SLA, error) {
	return s.listWhere(ctx, ``)
}

func (s *Postgres) listWhere(ctx context.Context, where string) ([]*models.SLA, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT `+slaColumns+` FROM protocol_slas `+where+` ORDER BY expected_end_date`)
	if err != nil {
		return nil, fmt.Errorf("list SLAs: %w", err)
	}
	defer rows.Close()

	var out []*models.SLA
	for rows.Next() {
		sla, err := scanSLA(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sla)
	}
	return out, rows.Err()
}

func scanSLA(row interface{ Scan(...any) error }) (*models.SLA, error) {
	var sla models.SLA
	err := row.Scan(
		&sla.ID, &sla.ProtocolID, &sla.StartDate, &sla.ExpectedEndDate, &sla.WorkingDays, &sla.CalendarDays,
		&sla.IsPaused, &sla.PausedAt, &sla.PausedReason, &sla.TotalPausedDays,
		&sla.ActualEndDate, &sla.IsOverdue, &sla.DaysOverdue, &sla.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan SLA: %w", err)
	}
	sla.StartDate = sla.StartDate.UTC()
	sla.ExpectedEndDate = sla.ExpectedEndDate.UTC()
	sla.UpdatedAt = sla.UpdatedAt.UTC()
	if sla.PausedAt != nil {
		t := sla.PausedAt.UTC()
		sla.PausedAt = &t
	}
	if sla.ActualEndDate != nil {
		t := sla.ActualEndDate.UTC()
		sla.ActualEndDate = &t
	}
	return &sla, nil
}
