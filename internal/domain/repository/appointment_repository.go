package repository

import (
	"context"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
)

// AppointmentTx is the write surface of the appointment store, scoped to a
// single local transaction. Appending outbox events through the same Tx keeps
// the state change and its events atomic.
type AppointmentTx interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	Update(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	// FindActiveByDoctorAndStart returns the non-terminal (PENDING or
	// CONFIRMED) appointment for the (doctor, startTime) pair, or nil.
	FindActiveByDoctorAndStart(ctx context.Context, doctorID string, startTime time.Time) (*entity.Appointment, error)
	AppendEvent(ctx context.Context, ev *entity.OutboxEvent) error
}

// AppointmentRepository is the persistent record of appointment state.
// Finders return nil without error when no row matches.
type AppointmentRepository interface {
	// InTx runs fn within one local transaction; fn's Tx must not escape it.
	InTx(ctx context.Context, fn func(tx AppointmentTx) error) error

	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindByDoctorAndStatuses(ctx context.Context, doctorID string, statuses []entity.AppointmentStatus, ascending bool) ([]entity.Appointment, error)
	FindByPatient(ctx context.Context, patientID string) ([]entity.Appointment, error)
	FindByPatientAndStatuses(ctx context.Context, patientID string, statuses []entity.AppointmentStatus) ([]entity.Appointment, error)
	FindByStartTimeBetween(ctx context.Context, from, to time.Time) ([]entity.Appointment, error)
}
