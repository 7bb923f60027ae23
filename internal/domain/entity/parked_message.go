package entity

import "time"

// ParkedMessage is an inbound event bus message that failed to decode or
// validate. The producer is an independently deployed service, so bad
// payloads are parked for inspection instead of silently dropped.
type ParkedMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string    `gorm:"type:varchar(100);not null;index" json:"topic"`
	MessageID string    `gorm:"type:varchar(100)" json:"message_id,omitempty"`
	Body      []byte    `gorm:"type:jsonb" json:"body"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ParkedMessage) TableName() string {
	return "parked_messages"
}
