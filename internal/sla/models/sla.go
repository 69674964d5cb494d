// Package models holds the SLA aggregate and its working-day arithmetic.
// All date math is day-granular in UTC.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "civicdesk/pkg/domain-errors"
)

// SLA tracks the response deadline for one protocol. A protocol has at most
// one SLA. An SLA with ActualEndDate set is terminal.
type SLA struct {
	ID              uuid.UUID  `json:"id"`
	ProtocolID      uuid.UUID  `json:"protocol_id"`
	StartDate       time.Time  `json:"start_date"`
	ExpectedEndDate time.Time  `json:"expected_end_date"`
	WorkingDays     int        `json:"working_days"`
	CalendarDays    int        `json:"calendar_days"`
	IsPaused        bool       `json:"is_paused"`
	PausedAt        *time.Time `json:"paused_at,omitempty"`
	PausedReason    string     `json:"paused_reason,omitempty"`
	TotalPausedDays int        `json:"total_paused_days"`
	ActualEndDate   *time.Time `json:"actual_end_date,omitempty"`
	IsOverdue       bool       `json:"is_overdue"`
	DaysOverdue     int        `json:"days_overdue"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddWorkingDays walks forward one day at a time, counting only weekdays.
// Saturdays and Sundays extend the deadline but never count toward it.
func AddWorkingDays(start time.Time, days int) time.Time {
	d := DateOnly(start)
	for remaining := days; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			remaining--
		}
	}
	return d
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// New builds an SLA starting at start and due after workingDays weekdays.
func New(protocolID uuid.UUID, start time.Time, workingDays int, now time.Time) (*SLA, error) {
	if workingDays <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "working days must be positive")
	}
	startDay := DateOnly(start)
	expected := AddWorkingDays(startDay, workingDays)
	return &SLA{
		ID:              uuid.New(),
		ProtocolID:      protocolID,
		StartDate:       startDay,
		ExpectedEndDate: expected,
		WorkingDays:     workingDays,
		CalendarDays:    daysBetween(startDay, expected),
		UpdatedAt:       now.UTC(),
	}, nil
}

// Terminal reports whether the SLA is completed.
func (s *SLA) Terminal() bool { return s.ActualEndDate != nil }

// Pause stops the SLA clock. Pausing a paused or completed SLA conflicts.
func (s *SLA) Pause(reason string, now time.Time) error {
	if s.Terminal() {
		return dErrors.New(dErrors.CodeConflict, "SLA is already completed")
	}
	if s.IsPaused {
		return dErrors.New(dErrors.CodeConflict, "SLA is already paused")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "pause reason is required")
	}
	paused := now.UTC()
	s.IsPaused = true
	s.PausedAt = &paused
	s.PausedReason = reason
	s.UpdatedAt = now.UTC()
	return nil
}

// Resume restarts the clock, pushing the deadline out by the number of
// calendar days spent paused. Pausing and resuming within the same day
// shifts nothing.
func (s *SLA) Resume(now time.Time) error {
	if !s.IsPaused {
		return dErrors.New(dErrors.CodeConflict, "SLA is not paused")
	}
	pausedDays := daysBetween(*s.PausedAt, now)
	if pausedDays > 0 {
		s.ExpectedEndDate = s.ExpectedEndDate.AddDate(0, 0, pausedDays)
		s.TotalPausedDays += pausedDays
		s.CalendarDays = daysBetween(s.StartDate, s.ExpectedEndDate)
	}
	s.IsPaused = false
	s.PausedAt = nil
	s.PausedReason = ""
	s.UpdatedAt = now.UTC()
	return nil
}

// Complete closes the SLA and freezes its overdue standing. Terminal.
func (s *SLA) Complete(now time.Time) error {
	if s.Terminal() {
		return dErrors.New(dErrors.CodeConflict, "SLA is already completed")
	}
	end := DateOnly(now)
	s.ActualEndDate = &end
	s.IsPaused = false
	s.PausedAt = nil
	s.PausedReason = ""
	s.refreshOverdue(end)
	s.UpdatedAt = now.UTC()
	return nil
}

// Refresh recomputes the overdue standing against now. Paused and completed
// SLAs are left untouched; calling repeatedly with the same now is a no-op.
func (s *SLA) Refresh(now time.Time) bool {
	if s.IsPaused || s.Terminal() {
		return false
	}
	before := s.IsOverdue
	beforeDays := s.DaysOverdue
	s.refreshOverdue(DateOnly(now))
	if s.IsOverdue != before || s.DaysOverdue != beforeDays {
		s.UpdatedAt = now.UTC()
		return true
	}
	return false
}

func (s *SLA) refreshOverdue(asOf time.Time) {
	overdueDays := daysBetween(s.ExpectedEndDate, asOf)
	if overdueDays > 0 {
		s.IsOverdue = true
		s.DaysOverdue = overdueDays
	} else {
		s.IsOverdue = false
		s.DaysOverdue = 0
	}
}

// DueWithin reports whether an active SLA's deadline falls within the next
// thresholdDays calendar days of now (today's deadline included).
func (s *SLA) DueWithin(thresholdDays int, now time.Time) bool {
	if s.IsPaused || s.Terminal() {
		return false
	}
	remaining := daysBetween(now, s.ExpectedEndDate)
	return remaining >= 0 && remaining <= thresholdDays
}

// CompletedOnTime reports whether a terminal SLA met its deadline.
func (s *SLA) CompletedOnTime() bool {
	return s.Terminal() && !s.ActualEndDate.After(s.ExpectedEndDate)
}
