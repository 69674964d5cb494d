package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicdesk/internal/sla/models"
	"civicdesk/internal/sla/service"
	"civicdesk/internal/sla/store"
	"civicdesk/pkg/requestcontext"
)

// 2025-11-03 is a Monday.
var monday = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func newTestRouter(at time.Time) *chi.Mux {
	svc := service.NewService(store.NewMemory())
	r := chi.NewRouter()
	// Pin the request time the way the middleware chain does in production.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithTime(req.Context(), at)))
		})
	})
	New(svc, nil).Register(r)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSLALifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(monday)
	protocolID := uuid.New()
	base := "/slas/" + protocolID.String()

	rec := do(r, http.MethodPost, base+"/", map[string]any{"working_days": 5})
	require.Equal(t, http.StatusCreated, rec.Code)

	var sla models.SLA
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sla))
	assert.Equal(t, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), sla.ExpectedEndDate)

	rec = do(r, http.MethodPost, base+"/", map[string]any{"working_days": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, base+"/pause", map[string]any{"reason": "awaiting documents"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, base+"/resume", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sla))
	assert.NotNil(t, sla.ActualEndDate)

	rec = do(r, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodDelete, base+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSLAQueriesOverHTTP(t *testing.T) {
	// A week after the start, a 2-working-day SLA is overdue.
	r := newTestRouter(monday.AddDate(0, 0, 7))

	protocolID := uuid.New()
	start := monday
	rec := do(r, http.MethodPost, "/slas/"+protocolID.String()+"/", map[string]any{
		"working_days": 2,
		"start_date":   start,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(r, http.MethodGet, "/slas/overdue", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), protocolID.String())

	rec = do(r, http.MethodGet, "/slas/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = do(r, http.MethodGet, "/slas/near-due?threshold_days=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/slas/"+uuid.New().String()+"/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodGet, "/slas/not-a-uuid/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
