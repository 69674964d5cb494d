package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/internal/dispatch"
	"civicdesk/internal/protocol/models"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

func educationContext(t *testing.T, kind string, data map[string]any) (context.Context, dispatch.Context) {
	t.Helper()
	now := time.Date(2025, 11, 7, 9, 0, 0, 0, time.UTC)
	p, err := models.NewProtocol(models.FormatNumber(now, 1), "svc-edu", "education", "citizen-1", now)
	require.NoError(t, err)

	return requestcontext.WithTime(context.Background(), now), dispatch.Context{
		Protocol: p,
		ServiceDescriptor: dispatch.ServiceDescriptor{
			Ref:        "svc-edu",
			ModuleType: "education",
			EntityKind: kind,
		},
		RequestData:  data,
		RequesterRef: "citizen-1",
	}
}

func TestEducationHandler(t *testing.T) {
	t.Run("claims only the education module", func(t *testing.T) {
		h := NewEducation(NewMemoryEducationStore())
		assert.True(t, h.CanHandle("education"))
		assert.False(t, h.CanHandle("health"))
	})

	t.Run("creates an enrollment by default", func(t *testing.T) {
		store := NewMemoryEducationStore()
		h := NewEducation(store)
		ctx, dc := educationContext(t, "", map[string]any{
			"student_name":      "Ana Souza",
			"guardian_name":     "Paulo Souza",
			"desired_grade":     "3",
			"has_special_needs": true,
			"enrollment_year":   float64(2026),
		})

		res, err := h.Execute(ctx, dc)
		require.NoError(t, err)
		assert.Equal(t, KindStudentEnrollment, res.EntityType)

		require.Len(t, store.Enrollments, 1)
		e := store.Enrollments[0]
		assert.Equal(t, dc.Protocol.Number, e.ProtocolNumber)
		assert.Equal(t, "Ana Souza", e.StudentName)
		assert.Equal(t, 2026, e.EnrollmentYear)
		assert.True(t, e.HasSpecialNeeds)
		assert.Equal(t, "pending", e.Status)
	})

	t.Run("enrollment year defaults to the request year", func(t *testing.T) {
		store := NewMemoryEducationStore()
		h := NewEducation(store)
		ctx, dc := educationContext(t, KindStudentEnrollment, map[string]any{"student_name": "Ana"})

		_, err := h.Execute(ctx, dc)
		require.NoError(t, err)
		assert.Equal(t, 2025, store.Enrollments[0].EnrollmentYear)
	})

	t.Run("creates a transport when the service says so", func(t *testing.T) {
		store := NewMemoryEducationStore()
		h := NewEducation(store)
		ctx, dc := educationContext(t, KindSchoolTransport, map[string]any{
			"student_name": "Ana Souza",
			"school_name":  "EM Monteiro Lobato",
			"shift":        "morning",
		})

		res, err := h.Execute(ctx, dc)
		require.NoError(t, err)
		assert.Equal(t, KindSchoolTransport, res.EntityType)
		require.Len(t, store.Transports, 1)
		assert.Equal(t, "EM Monteiro Lobato", store.Transports[0].SchoolName)
		assert.Empty(t, store.Enrollments)
	})

	t.Run("missing required fields fail validation", func(t *testing.T) {
		h := NewEducation(NewMemoryEducationStore())

		ctx, dc := educationContext(t, "", map[string]any{})
		_, err := h.Execute(ctx, dc)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		ctx, dc = educationContext(t, KindSchoolTransport, map[string]any{"student_name": "Ana"})
		_, err = h.Execute(ctx, dc)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown entity kind fails validation", func(t *testing.T) {
		h := NewEducation(NewMemoryEducationStore())
		ctx, dc := educationContext(t, "school_meal", map[string]any{"student_name": "Ana"})
		_, err := h.Execute(ctx, dc)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
