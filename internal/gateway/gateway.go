package gateway

import (
	"context"
	"time"
)

// DoctorProfile is the slice of the doctor-service profile the appointment
// core needs.
type DoctorProfile struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
}

// PatientProfile is the slice of the patient-service profile the appointment
// core needs. Phone is denormalized onto the appointment at booking time for
// notification use.
type PatientProfile struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

// ProfileGateway resolves doctor and patient references. A nil result means
// the reference is unusable; "entity does not exist" and "service
// unreachable" are deliberately not distinguished.
type ProfileGateway interface {
	GetDoctor(ctx context.Context, doctorID string) *DoctorProfile
	GetPatient(ctx context.Context, patientID string) *PatientProfile
}

// SlotGateway validates, locks, and unlocks doctor-owned time slots over RPC.
// All transport failures collapse into lock-denial; no remote error detail
// leaks to the state machine.
type SlotGateway interface {
	// ValidateAndLock reserves the slot for an in-flight booking. With a slot
	// id it issues a bulk block request; without one it searches the doctor's
	// slot list for a free entry matching start time and duration exactly.
	ValidateAndLock(ctx context.Context, doctorID, slotID string, start time.Time, durationMinutes int) bool

	// Unlock releases a previously locked slot. No-op on empty slotID. The
	// returned error is for recording only; callers must not fail on it.
	Unlock(ctx context.Context, doctorID, slotID string) error
}
