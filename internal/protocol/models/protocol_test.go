package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civicdesk/pkg/domain-errors"
)

func TestNewProtocol(t *testing.T) {
	now := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)
	number := FormatNumber(now, 1)

	t.Run("creates a bound protocol", func(t *testing.T) {
		p, err := NewProtocol(number, "svc-enrollment", "education", "citizen-1", now)
		require.NoError(t, err)
		assert.Equal(t, StatusBound, p.Status)
		assert.Equal(t, number, p.Number)
		assert.NotEqual(t, [16]byte{}, [16]byte(p.ID))
		assert.Nil(t, p.ConcludedAt)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		_, err := NewProtocol("2025-000001", "svc", "education", "citizen-1", now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("rejects missing references", func(t *testing.T) {
		_, err := NewProtocol(number, "", "education", "citizen-1", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewProtocol(number, "svc", "education", "", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestProtocolTransitions(t *testing.T) {
	now := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)
	later := now.Add(48 * time.Hour)

	newBound := func(t *testing.T) *Protocol {
		p, err := NewProtocol(FormatNumber(now, 7), "svc", "health", "citizen-2", now)
		require.NoError(t, err)
		return p
	}

	t.Run("approval concludes the protocol", func(t *testing.T) {
		p := newBound(t)
		require.NoError(t, p.CanApprove())
		p.ApplyApproval(later)
		assert.Equal(t, StatusCompleted, p.Status)
		require.NotNil(t, p.ConcludedAt)
		assert.Equal(t, later, *p.ConcludedAt)
	})

	t.Run("terminal protocols refuse further transitions", func(t *testing.T) {
		p := newBound(t)
		p.ApplyRejection(later)

		err := p.CanApprove()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		err = p.CanReject()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}
