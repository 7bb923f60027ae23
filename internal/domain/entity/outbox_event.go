package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the delivery state of an outbox event
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxEvent is a lifecycle event appended in the same transaction as the
// appointment state change it describes. A background dispatcher drains
// pending rows and publishes them to the event bus with retry.
type OutboxEvent struct {
	ID            string       `gorm:"type:varchar(40);primaryKey" json:"id"`
	AppointmentID string       `gorm:"type:varchar(40);not null;index" json:"appointment_id"`
	Topic         string       `gorm:"type:varchar(100);not null" json:"topic"`
	Payload       []byte       `gorm:"type:jsonb;not null" json:"payload"`
	Status        OutboxStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Attempts      int          `gorm:"not null;default:0" json:"attempts"`
	LastError     string       `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	PublishedAt   *time.Time   `json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// NewOutboxEvent builds a pending outbox row for the given topic.
func NewOutboxEvent(appointmentID, topic string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		ID:            uuid.NewString(),
		AppointmentID: appointmentID,
		Topic:         topic,
		Payload:       payload,
		Status:        OutboxStatusPending,
	}
}
