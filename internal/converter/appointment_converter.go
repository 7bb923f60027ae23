package converter

import (
	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its response DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		StartTime:       appointment.StartTime,
		DurationMinutes: appointment.DurationMinutes,
		Status:          string(appointment.Status),
		PaymentStatus:   string(appointment.PaymentStatus),
		SlotID:          appointment.SlotID,
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToListResponse converts a slice of entities to a list response
func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}
}
