package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civicdesk/internal/workflow/models"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/platform/tx"
)

// PostgresDefinitionStore persists definitions with the stage list encoded
// as a JSONB document.
type PostgresDefinitionStore struct {
	db *sql.DB
}

func NewPostgresDefinitionStore(db *sql.DB) *PostgresDefinitionStore {
	return &PostgresDefinitionStore{db: db}
}

func (s *PostgresDefinitionStore) Upsert(ctx context.Context, d *models.Definition) error {
	q := tx.Executor(ctx, s.db)

	stages, err := json.Marshal(d.Stages)
	if err != nil {
		return fmt.Errorf("encode stages: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO workflow_definitions (id, module_type, name, description, stages, default_sla_days, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (module_type) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			stages = EXCLUDED.stages,
			default_sla_days = EXCLUDED.default_sla_days,
			updated_at = EXCLUDED.updated_at`,
		d.ID, d.ModuleType, d.Name, d.Description, stages, d.DefaultSLADays, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert workflow definition: %w", err)
	}
	return nil
}

const definitionColumns = `id, module_type, name, COALESCE(description, ''), stages, default_sla_days, updated_at`

func (s *PostgresDefinitionStore) GetByModuleType(ctx context.Context, moduleType string) (*models.Definition, error) {
	q := tx.Executor(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT `+definitionColumns+` FROM workflow_definitions WHERE module_type = $1`, moduleType)
	return scanDefinition(row)
}

func (s *PostgresDefinitionStore) List(ctx context.Context) ([]*models.Definition, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT `+definitionColumns+` FROM workflow_definitions ORDER BY module_type`)
	if err != nil {
		return nil, fmt.Errorf("list workflow definitions: %w", err)
	}
	defer rows.Close()

	var out []*models.Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresDefinitionStore) Delete(ctx context.Context, moduleType string) error {
	q := tx.Executor(ctx, s.db)

	res, err := q.ExecContext(ctx, `DELETE FROM workflow_definitions WHERE module_type = $1`, moduleType)
	if err != nil {
		return fmt.Errorf("delete workflow definition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workflow definition: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanDefinition(row interface{ Scan(...any) error }) (*models.Definition, error) {
	var (
		d      models.Definition
		stages []byte
	)
	err := row.Scan(&d.ID, &d.ModuleType, &d.Name, &d.Description, &stages, &d.DefaultSLADays, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan workflow definition: %w", err)
	}
	if err := json.Unmarshal(stages, &d.Stages); err != nil {
		return nil, fmt.Errorf("decode stages: %w", err)
	}
	d.UpdatedAt = d.UpdatedAt.UTC()
	return &d, nil
}

// PostgresStageStore persists materialized stages. The unique
// (protocol_id, stage_order) constraint is the idempotency guard for
// workflow application.
type PostgresStageStore struct {
	db *sql.DB
}

func NewPostgresStageStore(db *sql.DB) *PostgresStageStore {
	return &PostgresStageStore{db: db}
}

// BulkCreate inserts all stages or none. Callers outside a transaction get
// their own, so a mid-batch conflict never leaves a partial stage set that
// a retry would mistake for a complete application.
func (s *PostgresStageStore) BulkCreate(ctx context.Context, stages []*models.ProtocolStage) error {
	if _, ok := tx.From(ctx); ok {
		return s.bulkCreate(ctx, stages)
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		return s.bulkCreate(ctx, stages)
	})
}

func (s *PostgresStageStore) bulkCreate(ctx context.Context, stages []*models.ProtocolStage) error {
	q := tx.Executor(ctx, s.db)

	for _, st := range stages {
		metadata, err := json.Marshal(st.Metadata)
		if err != nil {
			return fmt.Errorf("encode stage metadata: %w", err)
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO protocol_stages (id, protocol_id, stage_name, stage_order, due_date, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			st.ID, st.ProtocolID, st.StageName, st.Order, st.DueDate, metadata, st.CreatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return fmt.Errorf("stage %d for protocol %s: %w", st.Order, st.ProtocolID, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert protocol stage: %w", err)
		}
	}
	return nil
}

func (s *PostgresStageStore) ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.ProtocolStage, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, protocol_id, stage_name, stage_order, due_date, metadata, created_at
		FROM protocol_stages
		WHERE protocol_id = $1
		ORDER BY stage_order`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list protocol stages: %w", err)
	}
	defer rows.Close()

	var out []*models.ProtocolStage
	for rows.Next() {
		var (
			st       models.ProtocolStage
			metadata []byte
		)
		if err := rows.Scan(&st.ID, &st.ProtocolID, &st.StageName, &st.Order, &st.DueDate, &metadata, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan protocol stage: %w", err)
		}
		if err := json.Unmarshal(metadata, &st.Metadata); err != nil {
			return nil, fmt.Errorf("decode stage metadata: %w", err)
		}
		st.CreatedAt = st.CreatedAt.UTC()
		out = append(out, &st)
	}
	return out, rows.Err()
}

// PostgresDocumentStore persists protocol documents.
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, d *models.Document) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO protocol_documents (id, protocol_id, document_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.ProtocolID, d.DocumentType, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert protocol document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	q := tx.Executor(ctx, s.db)

	res, err := q.ExecContext(ctx, `UPDATE protocol_documents SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresDocumentStore) ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.Document, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, protocol_id, document_type, status, created_at
		FROM protocol_documents
		WHERE protocol_id = $1
		ORDER BY created_at`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list protocol documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ProtocolID, &d.DocumentType, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan protocol document: %w", err)
		}
		d.CreatedAt = d.CreatedAt.UTC()
		out = append(out, &d)
	}
	return out, rows.Err()
}

// PostgresActionStore persists recorded actions. ON CONFLICT DO NOTHING
// makes Record idempotent per (protocol, action).
type PostgresActionStore struct {
	db *sql.DB
}

func NewPostgresActionStore(db *sql.DB) *PostgresActionStore {
	return &PostgresActionStore{db: db}
}

func (s *PostgresActionStore) Record(ctx context.Context, a *models.Action) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO protocol_actions (id, protocol_id, action, actor_ref, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (protocol_id, action) DO NOTHING`,
		a.ID, a.ProtocolID, a.Action, a.ActorRef, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record protocol action: %w", err)
	}
	return nil
}

func (s *PostgresActionStore) ListByProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.Action, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, protocol_id, action, COALESCE(actor_ref, ''), created_at
		FROM protocol_actions
		WHERE protocol_id = $1
		ORDER BY created_at`, protocolID)
	if err != nil {
		return nil, fmt.Errorf("list protocol actions: %w", err)
	}
	defer rows.Close()

	var out []*models.Action
	for rows.Next() {
		var a models.Action
		if err := rows.Scan(&a.ID, &a.ProtocolID, &a.Action, &a.ActorRef, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan protocol action: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, &a)
	}
	return out, rows.Err()
}
