package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/dispatch"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

// Attendance priorities, most urgent first.
const (
	PriorityEmergency = 1
	PriorityUrgent    = 2
	PriorityStandard  = 3
	PriorityRoutine   = 4
)

// HealthAttendance is a triaged attendance request bound to a protocol.
type HealthAttendance struct {
	ID             uuid.UUID
	ProtocolNumber string
	PatientName    string
	Symptoms       string
	Priority       int
	Status         string
	CreatedAt      time.Time
}

// HealthStore persists health module entities.
type HealthStore interface {
	CreateAttendance(ctx context.Context, a *HealthAttendance) error
	UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error
}

// Health dispatches health-module protocols. Triage priority is derived
// from the form data alone; nothing is read from storage.
type Health struct {
	store HealthStore
}

func NewHealth(store HealthStore) *Health {
	return &Health{store: store}
}

func (h *Health) CanHandle(moduleType string) bool { return moduleType == "health" }

func (h *Health) Execute(ctx context.Context, dc dispatch.Context) (*dispatch.Result, error) {
	now := requestcontext.Now(ctx)

	patientName := stringField(dc.RequestData, "patient_name")
	if patientName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "patient_name is required for attendance")
	}
	symptoms := stringField(dc.RequestData, "symptoms")

	a := &HealthAttendance{
		ID:             uuid.New(),
		ProtocolNumber: dc.Protocol.Number,
		PatientName:    patientName,
		Symptoms:       symptoms,
		Priority:       TriagePriority(dc.RequestData),
		Status:         "pending",
		CreatedAt:      now,
	}
	if err := h.store.CreateAttendance(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEntityCreation, "persist health attendance")
	}
	return &dispatch.Result{EntityID: a.ID, EntityType: "health_attendance"}, nil
}

var emergencySymptoms = []string{"chest pain", "shortness of breath", "unconscious", "severe bleeding"}
var urgentSymptoms = []string{"high fever", "fracture", "bleeding", "persistent vomiting"}

// TriagePriority maps attendance form data to a queue priority. An explicit
// emergency flag always wins; otherwise the symptom text decides.
func TriagePriority(data map[string]any) int {
	if boolField(data, "emergency") {
		return PriorityEmergency
	}
	symptoms := strings.ToLower(stringField(data, "symptoms"))
	switch {
	case containsAny(symptoms, emergencySymptoms):
		return PriorityEmergency
	case containsAny(symptoms, urgentSymptoms):
		return PriorityUrgent
	case symptoms != "":
		return PriorityStandard
	default:
		return PriorityRoutine
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
