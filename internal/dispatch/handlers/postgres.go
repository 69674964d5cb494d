package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"civicdesk/pkg/platform/tx"
)

// PostgresEducationStore persists education entities. Methods run on the
// ambient transaction when one is present.
type PostgresEducationStore struct {
	db *sql.DB
}

func NewPostgresEducationStore(db *sql.DB) *PostgresEducationStore {
	return &PostgresEducationStore{db: db}
}

func (s *PostgresEducationStore) CreateEnrollment(ctx context.Context, e *StudentEnrollment) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO student_enrollments
			(id, protocol_number, student_name, guardian_name, desired_grade, desired_shift,
			 has_special_needs, status, enrollment_year, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10)`,
		e.ID, e.ProtocolNumber, e.StudentName, e.GuardianName, e.DesiredGrade, e.DesiredShift,
		e.HasSpecialNeeds, e.Status, e.EnrollmentYear, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert student enrollment: %w", err)
	}
	return nil
}

func (s *PostgresEducationStore) CreateTransport(ctx context.Context, t *SchoolTransport) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO school_transports
			(id, protocol_number, student_name, school_name, address, shift, status, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`,
		t.ID, t.ProtocolNumber, t.StudentName, t.SchoolName, t.Address, t.Shift, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert school transport: %w", err)
	}
	return nil
}

func (s *PostgresEducationStore) UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error {
	q := tx.Executor(ctx, s.db)

	if _, err := q.ExecContext(ctx, `
		UPDATE student_enrollments SET status = $2 WHERE protocol_number = $1`,
		protocolNumber, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE school_transports SET status = $2 WHERE protocol_number = $1`,
		protocolNumber, status); err != nil {
		return fmt.Errorf("update transport status: %w", err)
	}
	return nil
}

// PostgresHealthStore persists health entities.
type PostgresHealthStore struct {
	db *sql.DB
}

func NewPostgresHealthStore(db *sql.DB) *PostgresHealthStore {
	return &PostgresHealthStore{db: db}
}

func (s *PostgresHealthStore) CreateAttendance(ctx context.Context, a *HealthAttendance) error {
	q := tx.Executor(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO health_attendances
			(id, protocol_number, patient_name, symptoms, priority, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		a.ID, a.ProtocolNumber, a.PatientName, a.Symptoms, a.Priority, a.Status, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert health attendance: %w", err)
	}
	return nil
}

func (s *PostgresHealthStore) UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error {
	q := tx.Executor(ctx, s.db)

	if _, err := q.ExecContext(ctx, `
		UPDATE health_attendances SET status = $2 WHERE protocol_number = $1`,
		protocolNumber, status); err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	return nil
}
