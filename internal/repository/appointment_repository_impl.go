package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek-Anvekar/healthcare/internal/domain/entity"
	domainRepo "github.com/Abhishek-Anvekar/healthcare/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) InTx(ctx context.Context, fn func(tx domainRepo.AppointmentTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&appointmentTx{db: tx})
	})
}

func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	return findAppointmentByID(r.db.WithContext(ctx), id)
}

func (r *appointmentRepository) FindByDoctorAndStatuses(ctx context.Context, doctorID string, statuses []entity.AppointmentStatus, ascending bool) ([]entity.Appointment, error) {
	order := "start_time DESC"
	if ascending {
		order = "start_time ASC"
	}

	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, statuses).
		Order(order).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatient(ctx context.Context, patientID string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientAndStatuses(ctx context.Context, patientID string, statuses []entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND status IN ?", patientID, statuses).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByStartTimeBetween(ctx context.Context, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", from, to).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// appointmentTx is the transactional write surface bound to one gorm
// transaction.
type appointmentTx struct {
	db *gorm.DB
}

func (t *appointmentTx) Create(ctx context.Context, appointment *entity.Appointment) error {
	return t.db.WithContext(ctx).Create(appointment).Error
}

func (t *appointmentTx) Update(ctx context.Context, appointment *entity.Appointment) error {
	return t.db.WithContext(ctx).Save(appointment).Error
}

func (t *appointmentTx) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	return findAppointmentByID(t.db.WithContext(ctx), id)
}

func (t *appointmentTx) FindActiveByDoctorAndStart(ctx context.Context, doctorID string, startTime time.Time) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := t.db.WithContext(ctx).
		Where("doctor_id = ? AND start_time = ? AND status IN ?", doctorID, startTime, entity.ActiveStatuses()).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (t *appointmentTx) AppendEvent(ctx context.Context, ev *entity.OutboxEvent) error {
	return t.db.WithContext(ctx).Create(ev).Error
}

func findAppointmentByID(db *gorm.DB, id string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}
