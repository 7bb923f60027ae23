package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/config"
	"github.com/Abhishek-Anvekar/healthcare/internal/converter"
	"github.com/Abhishek-Anvekar/healthcare/internal/delivery/dto"
	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	"github.com/Abhishek-Anvekar/healthcare/internal/domain/event"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"
	"github.com/Abhishek-Anvekar/healthcare/internal/gateway"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidDuration       = errors.New("duration_minutes must be greater than zero")
	ErrInvalidDoctor         = errors.New("doctor reference could not be resolved")
	ErrInvalidPatient        = errors.New("patient reference could not be resolved")
	ErrSlotUnavailable       = errors.New("requested slot is not available")
	ErrAlreadyBooked         = errors.New("slot already booked for this doctor and time")
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrNotPending            = errors.New("only a PENDING appointment can be confirmed or rejected")
	ErrNotConfirmed          = errors.New("only a CONFIRMED appointment can be completed")
	ErrNotReschedulable      = errors.New("only a PENDING or CONFIRMED appointment can be rescheduled")
	ErrCompletedCannotCancel = errors.New("a COMPLETED appointment cannot be cancelled")
)

// Timeout for compensating calls issued after the request's own context may
// already be done.
const compensationTimeout = 5 * time.Second

type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Confirm(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	Reject(ctx context.Context, id, reason string) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id string, byDoctor bool) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, id string, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, id string) (*dto.AppointmentResponse, error)

	GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	UpcomingForDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error)
	PastForDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error)
	ForPatient(ctx context.Context, patientID string) (*dto.AppointmentListResponse, error)
	PastForPatient(ctx context.Context, patientID string) (*dto.AppointmentListResponse, error)
	FindBetween(ctx context.Context, from, to time.Time) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	log            *logrus.Logger
	repo           domainRepo.AppointmentRepository
	unlockFailures domainRepo.UnlockFailureRepository
	profiles       gateway.ProfileGateway
	slots          gateway.SlotGateway
	topics         config.TopicsConfig
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	repo domainRepo.AppointmentRepository,
	unlockFailures domainRepo.UnlockFailureRepository,
	profiles gateway.ProfileGateway,
	slots gateway.SlotGateway,
	topics config.TopicsConfig,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:            log,
		repo:           repo,
		unlockFailures: unlockFailures,
		profiles:       profiles,
		slots:          slots,
		topics:         topics,
	}
}

// Book creates a PENDING appointment.
//
// Ordering matters: slot lock happens before the duplicate-booking check,
// which happens before persistence. A duplicate found after the lock was
// acquired releases the lock (best-effort) so the slot is not stranded.
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	// Doctor and patient are resolved concurrently; both must succeed.
	var (
		doctor  *gateway.DoctorProfile
		patient *gateway.PatientProfile
		wg      sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		doctor = u.profiles.GetDoctor(ctx, req.DoctorID)
	}()
	go func() {
		defer wg.Done()
		patient = u.profiles.GetPatient(ctx, req.PatientID)
	}()
	wg.Wait()

	if doctor == nil {
		return nil, ErrInvalidDoctor
	}
	if patient == nil {
		return nil, ErrInvalidPatient
	}

	if ok := u.slots.ValidateAndLock(ctx, req.DoctorID, req.SlotID, req.StartTime, req.DurationMinutes); !ok {
		return nil, ErrSlotUnavailable
	}

	patientPhone := patient.Phone
	if patientPhone == "" {
		patientPhone = req.PatientPhone
	}

	appointment := &entity.Appointment{
		ID:              entity.NewAppointmentID(),
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		PatientPhone:    patientPhone,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          entity.AppointmentStatusPending,
		PaymentStatus:   entity.PaymentStatusNA,
		SlotID:          req.SlotID,
		Notes:           req.Notes,
	}

	err := u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		existing, err := tx.FindActiveByDoctorAndStart(ctx, req.DoctorID, req.StartTime)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyBooked
		}
		if err := tx.Create(ctx, appointment); err != nil {
			return err
		}
		return u.appendNotify(ctx, tx, event.TypeAppointmentCreated, appointment)
	})
	if err != nil {
		// The slot was locked above; release it so it does not stay blocked
		// for a booking that never happened.
		u.releaseSlot(req.DoctorID, req.SlotID, appointment.ID, entity.UnlockOpDuplicateRelease)
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s doctor=%s patient=%s start=%s",
		appointment.ID, appointment.DoctorID, appointment.PatientID, appointment.StartTime.Format(time.RFC3339))
	return converter.AppointmentToResponse(appointment), nil
}

// Confirm transitions PENDING -> CONFIRMED and publishes a confirmed event
// carrying the doctor display name, fetched now rather than cached.
func (u *appointmentUsecase) Confirm(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	current, err := u.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsPending() {
		return nil, ErrNotPending
	}

	var fullName string
	if doctor := u.profiles.GetDoctor(ctx, current.DoctorID); doctor != nil {
		fullName = doctor.FullName
	}

	var confirmed *entity.Appointment
	err = u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		appointment, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.IsPending() {
			return ErrNotPending
		}

		appointment.Status = entity.AppointmentStatusConfirmed
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}

		payload := event.Confirmed{
			AppointmentID: appointment.ID,
			DoctorID:      appointment.DoctorID,
			PatientID:     appointment.PatientID,
			PatientPhone:  appointment.PatientPhone,
			StartTime:     appointment.StartTime.Format(time.RFC3339),
			FullName:      fullName,
		}
		if err := u.appendEvent(ctx, tx, u.topics.Confirmed, appointment.ID, payload); err != nil {
			return err
		}
		if err := u.appendNotify(ctx, tx, event.TypeAppointmentConfirmed, appointment); err != nil {
			return err
		}
		confirmed = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment confirmed: id=%s", id)
	return converter.AppointmentToResponse(confirmed), nil
}

// Reject transitions PENDING -> REJECTED and releases the slot best-effort.
func (u *appointmentUsecase) Reject(ctx context.Context, id, reason string) (*dto.AppointmentResponse, error) {
	var rejected *entity.Appointment
	err := u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		appointment, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.IsPending() {
			return ErrNotPending
		}

		appointment.Status = entity.AppointmentStatusRejected
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}

		payload := event.Rejected{
			AppointmentID: appointment.ID,
			Reason:        reason,
			PatientPhone:  appointment.PatientPhone,
		}
		if err := u.appendEvent(ctx, tx, u.topics.Rejected, appointment.ID, payload); err != nil {
			return err
		}
		if err := u.appendNotify(ctx, tx, event.TypeAppointmentRejected, appointment); err != nil {
			return err
		}
		rejected = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.releaseSlot(rejected.DoctorID, rejected.SlotID, rejected.ID, entity.UnlockOpReject)
	u.log.Infof("Appointment rejected: id=%s reason=%q", id, reason)
	return converter.AppointmentToResponse(rejected), nil
}

// Cancel is idempotent: cancelling an already CANCELLED appointment returns
// the current record without a second unlock. A COMPLETED appointment cannot
// be cancelled.
func (u *appointmentUsecase) Cancel(ctx context.Context, id string, byDoctor bool) (*dto.AppointmentResponse, error) {
	var (
		cancelled     *entity.Appointment
		alreadyCancel bool
	)
	err := u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		appointment, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if appointment.IsCancelled() {
			cancelled = appointment
			alreadyCancel = true
			return nil
		}
		if appointment.IsCompleted() {
			return ErrCompletedCannotCancel
		}

		appointment.Status = entity.AppointmentStatusCancelled
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}

		payload := event.Cancelled{
			AppointmentID: appointment.ID,
			ByDoctor:      byDoctor,
			PatientPhone:  appointment.PatientPhone,
		}
		if err := u.appendEvent(ctx, tx, u.topics.Cancelled, appointment.ID, payload); err != nil {
			return err
		}
		if err := u.appendNotify(ctx, tx, event.TypeAppointmentCancelled, appointment); err != nil {
			return err
		}
		cancelled = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyCancel {
		u.releaseSlot(cancelled.DoctorID, cancelled.SlotID, cancelled.ID, entity.UnlockOpCancel)
		u.log.Infof("Appointment cancelled: id=%s byDoctor=%t", id, byDoctor)
	}
	return converter.AppointmentToResponse(cancelled), nil
}

// Reschedule locks the new slot first; only on success does it release the
// old slot and mutate start/duration/slot in place. Status is unchanged. If
// the new slot cannot be locked the appointment is untouched.
func (u *appointmentUsecase) Reschedule(ctx context.Context, id string, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	if req.NewDurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	current, err := u.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.CanReschedule() {
		return nil, ErrNotReschedulable
	}

	if ok := u.slots.ValidateAndLock(ctx, current.DoctorID, req.NewSlotID, req.NewStartTime, req.NewDurationMinutes); !ok {
		return nil, ErrSlotUnavailable
	}

	var (
		rescheduled *entity.Appointment
		oldSlotID   string
	)
	err = u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		appointment, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.CanReschedule() {
			return ErrNotReschedulable
		}

		oldSlotID = appointment.SlotID
		appointment.StartTime = req.NewStartTime
		appointment.DurationMinutes = req.NewDurationMinutes
		appointment.SlotID = req.NewSlotID
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}
		if err := u.appendNotify(ctx, tx, event.TypeAppointmentRescheduled, appointment); err != nil {
			return err
		}
		rescheduled = appointment
		return nil
	})
	if err != nil {
		// The new slot was locked above but the reschedule did not commit.
		u.releaseSlot(current.DoctorID, req.NewSlotID, id, entity.UnlockOpReschedule)
		return nil, err
	}

	u.releaseSlot(rescheduled.DoctorID, oldSlotID, rescheduled.ID, entity.UnlockOpReschedule)
	u.log.Infof("Appointment rescheduled: id=%s newStart=%s", id, req.NewStartTime.Format(time.RFC3339))
	return converter.AppointmentToResponse(rescheduled), nil
}

// Complete transitions CONFIRMED -> COMPLETED.
func (u *appointmentUsecase) Complete(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	var completed *entity.Appointment
	err := u.repo.InTx(ctx, func(tx domainRepo.AppointmentTx) error {
		appointment, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}
		if !appointment.IsConfirmed() {
			return ErrNotConfirmed
		}

		appointment.Status = entity.AppointmentStatusCompleted
		if err := tx.Update(ctx, appointment); err != nil {
			return err
		}
		if err := u.appendNotify(ctx, tx, event.TypeAppointmentCompleted, appointment); err != nil {
			return err
		}
		completed = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment completed: id=%s", id)
	return converter.AppointmentToResponse(completed), nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appointment, err := u.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) UpcomingForDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.repo.FindByDoctorAndStatuses(ctx, doctorID, entity.ActiveStatuses(), true)
	if err != nil {
		u.log.Warnf("Failed to list upcoming appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) PastForDoctor(ctx context.Context, doctorID string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.repo.FindByDoctorAndStatuses(ctx, doctorID, entity.PastStatuses(), false)
	if err != nil {
		u.log.Warnf("Failed to list past appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) ForPatient(ctx context.Context, patientID string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.repo.FindByPatient(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to list appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) PastForPatient(ctx context.Context, patientID string) (*dto.AppointmentListResponse, error) {
	appointments, err := u.repo.FindByPatientAndStatuses(ctx, patientID, entity.PastStatuses())
	if err != nil {
		u.log.Warnf("Failed to list past appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) FindBetween(ctx context.Context, from, to time.Time) (*dto.AppointmentListResponse, error) {
	appointments, err := u.repo.FindByStartTimeBetween(ctx, from, to)
	if err != nil {
		u.log.Warnf("Failed to search appointments between %s and %s: %+v", from, to, err)
		return nil, err
	}
	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) mustFind(ctx context.Context, id string) (*entity.Appointment, error) {
	appointment, err := u.repo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// releaseSlot unlocks a slot best-effort. A failed unlock never fails the
// caller's transition; it is recorded for offline repair instead.
func (u *appointmentUsecase) releaseSlot(doctorID, slotID, appointmentID, operation string) {
	if slotID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
	defer cancel()

	if err := u.slots.Unlock(ctx, doctorID, slotID); err != nil {
		u.log.Warnf("Best-effort slot unlock failed: doctor=%s slot=%s op=%s: %+v", doctorID, slotID, operation, err)
		failure := &entity.SlotUnlockFailure{
			DoctorID:      doctorID,
			SlotID:        slotID,
			AppointmentID: appointmentID,
			Operation:     operation,
			Reason:        err.Error(),
		}
		if recErr := u.unlockFailures.Record(ctx, failure); recErr != nil {
			u.log.Errorf("Failed to record unlock failure for slot %s: %+v", slotID, recErr)
		}
	}
}

func (u *appointmentUsecase) appendEvent(ctx context.Context, tx domainRepo.AppointmentTx, topic, appointmentID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.AppendEvent(ctx, entity.NewOutboxEvent(appointmentID, topic, data))
}

func (u *appointmentUsecase) appendNotify(ctx context.Context, tx domainRepo.AppointmentTx, eventType string, appointment *entity.Appointment) error {
	payload := event.Notify{
		Type:          eventType,
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		StartTime:     appointment.StartTime.Format(time.RFC3339),
	}
	return u.appendEvent(ctx, tx, u.topics.Notify, appointment.ID, payload)
}
