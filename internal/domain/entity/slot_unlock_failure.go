package entity

import "time"

// SlotUnlockFailure records a best-effort slot unlock that did not go
// through. Unlock failures never abort the caller's transition; they are
// persisted here for offline reconciliation against the doctor-service.
type SlotUnlockFailure struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID      string    `gorm:"type:varchar(40);not null;index" json:"doctor_id"`
	SlotID        string    `gorm:"type:varchar(40);not null" json:"slot_id"`
	AppointmentID string    `gorm:"type:varchar(40);index" json:"appointment_id,omitempty"`
	Operation     string    `gorm:"type:varchar(30);not null" json:"operation"`
	Reason        string    `gorm:"type:text" json:"reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SlotUnlockFailure) TableName() string {
	return "slot_unlock_failures"
}

// Unlock operations recorded on failure
const (
	UnlockOpReject           = "reject"
	UnlockOpCancel           = "cancel"
	UnlockOpReschedule       = "reschedule"
	UnlockOpDuplicateRelease = "duplicate-release"
)
