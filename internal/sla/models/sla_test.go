package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civicdesk/pkg/domain-errors"
)

// 2025-11-03 is a Monday.
var monday = time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)

func TestAddWorkingDays(t *testing.T) {
	t.Run("five working days from Monday land on next Monday", func(t *testing.T) {
		got := AddWorkingDays(monday, 5)
		assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), got)
		assert.Equal(t, time.Monday, got.Weekday())
	})

	t.Run("one working day from Friday lands on Monday", func(t *testing.T) {
		friday := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)
		got := AddWorkingDays(friday, 1)
		assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("weekend start still counts only weekdays", func(t *testing.T) {
		saturday := time.Date(2025, 11, 8, 0, 0, 0, 0, time.UTC)
		got := AddWorkingDays(saturday, 2)
		assert.Equal(t, time.Date(2025, 11, 11, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestNewSLA(t *testing.T) {
	s, err := New(uuid.New(), monday, 5, monday)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), s.StartDate)
	assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), s.ExpectedEndDate)
	assert.Equal(t, 5, s.WorkingDays)
	assert.Equal(t, 7, s.CalendarDays)
	assert.False(t, s.IsOverdue)

	_, err = New(uuid.New(), monday, 0, monday)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestPauseResume(t *testing.T) {
	newSLA := func(t *testing.T) *SLA {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)
		return s
	}

	t.Run("resume shifts the deadline by paused calendar days", func(t *testing.T) {
		s := newSLA(t)
		require.NoError(t, s.Pause("awaiting citizen documents", monday.AddDate(0, 0, 1)))
		require.NoError(t, s.Resume(monday.AddDate(0, 0, 4)))

		assert.Equal(t, time.Date(2025, 11, 13, 0, 0, 0, 0, time.UTC), s.ExpectedEndDate)
		assert.Equal(t, 3, s.TotalPausedDays)
		// The calendar span is recomputed from the original start date, so
		// the shifted deadline keeps calendarDays = expectedEnd - start.
		assert.Equal(t, 10, s.CalendarDays)
		assert.False(t, s.IsPaused)
		assert.Empty(t, s.PausedReason)
	})

	t.Run("same-day pause and resume shifts nothing", func(t *testing.T) {
		s := newSLA(t)
		require.NoError(t, s.Pause("quick hold", monday))
		require.NoError(t, s.Resume(monday.Add(6*time.Hour)))

		assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), s.ExpectedEndDate)
		assert.Zero(t, s.TotalPausedDays)
		assert.Equal(t, 7, s.CalendarDays)
	})

	t.Run("double pause conflicts", func(t *testing.T) {
		s := newSLA(t)
		require.NoError(t, s.Pause("hold", monday))
		err := s.Pause("hold again", monday)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("resume without pause conflicts", func(t *testing.T) {
		s := newSLA(t)
		err := s.Resume(monday)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("pause requires a reason", func(t *testing.T) {
		s := newSLA(t)
		err := s.Pause("", monday)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestComplete(t *testing.T) {
	t.Run("on-time completion", func(t *testing.T) {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)

		require.NoError(t, s.Complete(monday.AddDate(0, 0, 4)))
		assert.True(t, s.Terminal())
		assert.True(t, s.CompletedOnTime())
		assert.False(t, s.IsOverdue)
	})

	t.Run("late completion freezes overdue days", func(t *testing.T) {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)

		require.NoError(t, s.Complete(monday.AddDate(0, 0, 10)))
		assert.True(t, s.IsOverdue)
		assert.Equal(t, 3, s.DaysOverdue)
		assert.False(t, s.CompletedOnTime())
	})

	t.Run("complete is terminal", func(t *testing.T) {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)
		require.NoError(t, s.Complete(monday))

		err = s.Complete(monday)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		err = s.Pause("late hold", monday)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestRefresh(t *testing.T) {
	t.Run("marks overdue past the deadline", func(t *testing.T) {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)

		assert.False(t, s.Refresh(monday.AddDate(0, 0, 7)), "deadline day itself is not overdue")

		changed := s.Refresh(monday.AddDate(0, 0, 9))
		assert.True(t, changed)
		assert.True(t, s.IsOverdue)
		assert.Equal(t, 2, s.DaysOverdue)

		// Idempotent for the same day.
		assert.False(t, s.Refresh(monday.AddDate(0, 0, 9)))
	})

	t.Run("skips paused and completed SLAs", func(t *testing.T) {
		s, err := New(uuid.New(), monday, 5, monday)
		require.NoError(t, err)
		require.NoError(t, s.Pause("hold", monday))
		assert.False(t, s.Refresh(monday.AddDate(0, 0, 30)))
		assert.False(t, s.IsOverdue)

		require.NoError(t, s.Resume(monday))
		require.NoError(t, s.Complete(monday))
		assert.False(t, s.Refresh(monday.AddDate(0, 0, 30)))
	})
}

func TestDueWithin(t *testing.T) {
	s, err := New(uuid.New(), monday, 5, monday)
	require.NoError(t, err)

	assert.True(t, s.DueWithin(3, monday.AddDate(0, 0, 5)))
	assert.True(t, s.DueWithin(0, monday.AddDate(0, 0, 7)), "due today counts")
	assert.False(t, s.DueWithin(3, monday), "too far out")
	assert.False(t, s.DueWithin(3, monday.AddDate(0, 0, 8)), "already overdue")
}
