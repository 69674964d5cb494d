package dispatch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civicdesk/pkg/domain-errors"
)

type stubHandler struct {
	claims map[string]bool
	name   string
}

func (h *stubHandler) CanHandle(moduleType string) bool { return h.claims[moduleType] }

func (h *stubHandler) Execute(context.Context, Context) (*Result, error) {
	return &Result{EntityID: uuid.New(), EntityType: h.name}, nil
}

func TestRegistryResolve(t *testing.T) {
	education := &stubHandler{name: "education", claims: map[string]bool{"education": true}}
	health := &stubHandler{name: "health", claims: map[string]bool{"health": true}}
	greedy := &stubHandler{name: "greedy", claims: map[string]bool{"education": true, "health": true}}

	t.Run("first registered match wins", func(t *testing.T) {
		r := NewRegistry()
		r.Register(education)
		r.Register(greedy)

		h, err := r.Resolve("education")
		require.NoError(t, err)
		assert.Same(t, Handler(education), h)

		h, err = r.Resolve("health")
		require.NoError(t, err)
		assert.Same(t, Handler(greedy), h)
	})

	t.Run("fallback catches unclaimed types", func(t *testing.T) {
		fallback := &stubHandler{name: "custom"}
		r := NewRegistry()
		r.Register(education)
		r.Register(health)
		r.SetFallback(fallback)

		h, err := r.Resolve("sanitation")
		require.NoError(t, err)
		assert.Same(t, Handler(fallback), h)
	})

	t.Run("no match and no fallback is unknown_module", func(t *testing.T) {
		r := NewRegistry()
		r.Register(education)

		_, err := r.Resolve("sanitation")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownModule))
	})
}
