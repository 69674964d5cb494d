package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Run("returns code of a direct error", func(t *testing.T) {
		err := New(CodeConflict, "sla already exists")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("walks fmt wrap chains", func(t *testing.T) {
		err := fmt.Errorf("dispatch: %w", New(CodeUnknownModule, "no handler for moduleType"))
		assert.Equal(t, CodeUnknownModule, CodeOf(err))
	})

	t.Run("uncoded errors report internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil cause returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves the cause for errors.Is", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "store failure")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(New(CodeConcurrencyTimeout, "lock wait exceeded")))
	assert.True(t, Transient(New(CodeDuplicateNumber, "number collision")))
	assert.False(t, Transient(New(CodeValidation, "missing field")))
	assert.False(t, Transient(New(CodeUnknownModule, "no handler")))
	assert.False(t, Transient(errors.New("plain")))
}
