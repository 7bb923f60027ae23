package dto

import "time"

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        string    `json:"doctor_id" validate:"required"`
	PatientID       string    `json:"patient_id" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0"`
	SlotID          string    `json:"slot_id,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	// PatientPhone is a contact fallback used only when the patient profile
	// carries no phone number.
	PatientPhone string `json:"patient_phone,omitempty"`
}

type RescheduleAppointmentRequest struct {
	NewStartTime       time.Time `json:"new_start_time" validate:"required"`
	NewDurationMinutes int       `json:"new_duration_minutes" validate:"required,gt=0"`
	NewSlotID          string    `json:"new_slot_id,omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	SlotID          string    `json:"slot_id,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
