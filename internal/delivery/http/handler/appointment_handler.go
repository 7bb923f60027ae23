package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
	"github.com/Abhishek-Anvekar/healthcare/internal/usecase"
	"github.com/Abhishek-Anvekar/healthcare/pkg/response"
	"github.com/Abhishek-Anvekar/healthcare/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Book(r.Context(), &req)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.appointmentUsecase.Confirm(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment confirmed successfully", appointment)
}

func (h *AppointmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reason := r.URL.Query().Get("reason")

	appointment, err := h.appointmentUsecase.Reject(r.Context(), mux.Vars(r)["id"], reason)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment rejected successfully", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	byDoctor, _ := strconv.ParseBool(r.URL.Query().Get("byDoctor"))

	appointment, err := h.appointmentUsecase.Cancel(r.Context(), mux.Vars(r)["id"], byDoctor)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.Reschedule(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.appointmentUsecase.Complete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment completed successfully", appointment)
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.appointmentUsecase.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) UpcomingForDoctor(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.UpcomingForDoctor(r.Context(), mux.Vars(r)["doctorId"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) PastForDoctor(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.PastForDoctor(r.Context(), mux.Vars(r)["doctorId"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ForPatient(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ForPatient(r.Context(), mux.Vars(r)["patientId"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) PastForPatient(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.PastForPatient(r.Context(), mux.Vars(r)["patientId"])
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) Search(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid 'from' timestamp, expected RFC3339", nil)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid 'to' timestamp, expected RFC3339", nil)
		return
	}

	appointments, err := h.appointmentUsecase.FindBetween(r.Context(), from, to)
	if err != nil {
		h.writeUsecaseError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// writeUsecaseError maps the usecase error taxonomy onto HTTP statuses:
// invalid input and unresolvable references are 400, conflicts are 409,
// unknown appointments are 404.
func (h *AppointmentHandler) writeUsecaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, usecase.ErrInvalidDuration),
		errors.Is(err, usecase.ErrInvalidDoctor),
		errors.Is(err, usecase.ErrInvalidPatient):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, usecase.ErrSlotUnavailable),
		errors.Is(err, usecase.ErrAlreadyBooked),
		errors.Is(err, usecase.ErrNotPending),
		errors.Is(err, usecase.ErrNotConfirmed),
		errors.Is(err, usecase.ErrNotReschedulable),
		errors.Is(err, usecase.ErrCompletedCannotCancel):
		response.Error(w, http.StatusConflict, err.Error(), nil)
	default:
		response.InternalServerError(w, "Something went wrong")
	}
}
