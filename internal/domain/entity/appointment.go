package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusRejected  AppointmentStatus = "REJECTED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusNA       PaymentStatus = "NA"
)

// ActiveStatuses are the non-terminal statuses. At most one appointment with
// an active status may exist per (doctor, startTime) pair.
func ActiveStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}
}

// PastStatuses are the statuses shown in appointment history listings.
func PastStatuses() []AppointmentStatus {
	return []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCancelled}
}

// Appointment is the single source of truth for patient-facing appointment
// state. The doctor-service remains authoritative for slot capacity.
type Appointment struct {
	ID              string            `gorm:"type:varchar(40);primaryKey" json:"id"`
	DoctorID        string            `gorm:"type:varchar(40);not null;index:idx_appt_doctor_time" json:"doctor_id"`
	PatientID       string            `gorm:"type:varchar(40);not null;index" json:"patient_id"`
	PatientPhone    string            `gorm:"type:varchar(20);not null" json:"patient_phone"`
	StartTime       time.Time         `gorm:"not null;index:idx_appt_doctor_time" json:"start_time"`
	DurationMinutes int               `gorm:"not null" json:"duration_minutes"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus   PaymentStatus     `gorm:"type:varchar(20);not null" json:"payment_status"`
	SlotID          string            `gorm:"type:varchar(40)" json:"slot_id,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointmentID returns a time-sortable appointment id.
func NewAppointmentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsTerminal reports whether no further transition is permitted.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case AppointmentStatusRejected, AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// CanReschedule reports whether start/duration/slot may still be changed.
func (a *Appointment) CanReschedule() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}
