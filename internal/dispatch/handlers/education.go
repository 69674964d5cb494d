package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/dispatch"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

// Entity kinds the education handler knows how to create. The service
// descriptor selects the kind; enrollment is the default.
const (
	KindStudentEnrollment = "student_enrollment"
	KindSchoolTransport   = "school_transport"
)

// StudentEnrollment is an enrollment request bound to a protocol.
type StudentEnrollment struct {
	ID              uuid.UUID
	ProtocolNumber  string
	StudentName     string
	GuardianName    string
	DesiredGrade    string
	DesiredShift    string
	HasSpecialNeeds bool
	Status          string
	EnrollmentYear  int
	CreatedAt       time.Time
}

// SchoolTransport is a transport request bound to a protocol.
type SchoolTransport struct {
	ID             uuid.UUID
	ProtocolNumber string
	StudentName    string
	SchoolName     string
	Address        string
	Shift          string
	Status         string
	CreatedAt      time.Time
}

// EducationStore persists education module entities.
type EducationStore interface {
	CreateEnrollment(ctx context.Context, e *StudentEnrollment) error
	CreateTransport(ctx context.Context, t *SchoolTransport) error
	UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error
}

// Education dispatches education-module protocols.
type Education struct {
	store EducationStore
}

func NewEducation(store EducationStore) *Education {
	return &Education{store: store}
}

func (h *Education) CanHandle(moduleType string) bool { return moduleType == "education" }

func (h *Education) Execute(ctx context.Context, dc dispatch.Context) (*dispatch.Result, error) {
	now := requestcontext.Now(ctx)

	switch kind := dc.ServiceDescriptor.EntityKind; kind {
	case KindSchoolTransport:
		return h.createTransport(ctx, dc, now)
	case KindStudentEnrollment, "":
		return h.createEnrollment(ctx, dc, now)
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "education module cannot create entity kind %q", kind)
	}
}

func (h *Education) createEnrollment(ctx context.Context, dc dispatch.Context, now time.Time) (*dispatch.Result, error) {
	studentName := stringField(dc.RequestData, "student_name")
	if studentName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "student_name is required for enrollment")
	}
	year := intField(dc.RequestData, "enrollment_year")
	if year == 0 {
		year = now.Year()
	}

	e := &StudentEnrollment{
		ID:              uuid.New(),
		ProtocolNumber:  dc.Protocol.Number,
		StudentName:     studentName,
		GuardianName:    stringField(dc.RequestData, "guardian_name"),
		DesiredGrade:    stringField(dc.RequestData, "desired_grade"),
		DesiredShift:    stringField(dc.RequestData, "desired_shift"),
		HasSpecialNeeds: boolField(dc.RequestData, "has_special_needs"),
		Status:          "pending",
		EnrollmentYear:  year,
		CreatedAt:       now,
	}
	if err := h.store.CreateEnrollment(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEntityCreation, "persist student enrollment")
	}
	return &dispatch.Result{EntityID: e.ID, EntityType: KindStudentEnrollment}, nil
}

func (h *Education) createTransport(ctx context.Context, dc dispatch.Context, now time.Time) (*dispatch.Result, error) {
	studentName := stringField(dc.RequestData, "student_name")
	schoolName := stringField(dc.RequestData, "school_name")
	if studentName == "" || schoolName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "student_name and school_name are required for transport")
	}

	tr := &SchoolTransport{
		ID:             uuid.New(),
		ProtocolNumber: dc.Protocol.Number,
		StudentName:    studentName,
		SchoolName:     schoolName,
		Address:        stringField(dc.RequestData, "address"),
		Shift:          stringField(dc.RequestData, "shift"),
		Status:         "pending",
		CreatedAt:      now,
	}
	if err := h.store.CreateTransport(ctx, tr); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEntityCreation, "persist school transport")
	}
	return &dispatch.Result{EntityID: tr.ID, EntityType: KindSchoolTransport}, nil
}
