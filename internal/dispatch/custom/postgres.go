package custom

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civicdesk/pkg/platform/tx"
)

// PostgresDefinitionStore resolves definitions against the
// custom_table_definitions table. Creation races are settled by the unique
// constraint on module_type: insert, catch the violation, re-read the
// winner's row. Never check-then-insert.
type PostgresDefinitionStore struct {
	db *sql.DB
}

func NewPostgresDefinitionStore(db *sql.DB) *PostgresDefinitionStore {
	return &PostgresDefinitionStore{db: db}
}

func (s *PostgresDefinitionStore) FindOrCreate(ctx context.Context, moduleType string, now time.Time) (*Definition, error) {
	q := tx.Executor(ctx, s.db)

	if def, err := s.find(ctx, q, moduleType); err == nil {
		return def, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	def := &Definition{
		ID:         uuid.New(),
		ModuleType: moduleType,
		TableName:  TableName(moduleType),
		CreatedAt:  now,
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO custom_table_definitions (id, module_type, table_name, created_at)
		VALUES ($1, $2, $3, $4)`,
		def.ID, def.ModuleType, def.TableName, def.CreatedAt,
	)
	if err == nil {
		return def, nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Lost the race; the winner's definition is authoritative.
		def, err := s.find(ctx, q, moduleType)
		if err != nil {
			return nil, fmt.Errorf("re-read custom definition: %w", err)
		}
		return def, nil
	}
	return nil, fmt.Errorf("insert custom definition: %w", err)
}

func (s *PostgresDefinitionStore) find(ctx context.Context, q tx.Querier, moduleType string) (*Definition, error) {
	var def Definition
	err := q.QueryRowContext(ctx, `
		SELECT id, module_type, table_name, created_at
		FROM custom_table_definitions
		WHERE module_type = $1`, moduleType,
	).Scan(&def.ID, &def.ModuleType, &def.TableName, &def.CreatedAt)
	if err != nil {
		return nil, err
	}
	def.CreatedAt = def.CreatedAt.UTC()
	return &def, nil
}

// PostgresRecordStore persists raw payloads as JSONB rows.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Create(ctx context.Context, r *Record) error {
	q := tx.Executor(ctx, s.db)

	data, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("encode custom record data: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO custom_module_records (id, definition_id, protocol_number, status, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.DefinitionID, r.ProtocolNumber, r.Status, data, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert custom record: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		UPDATE custom_module_records SET status = $2 WHERE protocol_number = $1`,
		protocolNumber, status)
	if err != nil {
		return fmt.Errorf("update custom record status: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) ListByProtocol(ctx context.Context, protocolNumber string) ([]*Record, error) {
	q := tx.Executor(ctx, s.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, definition_id, protocol_number, status, data, created_at
		FROM custom_module_records
		WHERE protocol_number = $1
		ORDER BY created_at`, protocolNumber)
	if err != nil {
		return nil, fmt.Errorf("list custom records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var (
			r    Record
			data []byte
		)
		if err := rows.Scan(&r.ID, &r.DefinitionID, &r.ProtocolNumber, &r.Status, &data, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom record: %w", err)
		}
		if err := json.Unmarshal(data, &r.Data); err != nil {
			return nil, fmt.Errorf("decode custom record data: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, &r)
	}
	return out, rows.Err()
}
