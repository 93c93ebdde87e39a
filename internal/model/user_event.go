package model

import "time"

// User lifecycle event types.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is an audit record of a committed user write.
type UserEvent struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	Type       string    `json:"type" gorm:"size:32;not null;index"`
	UserID     string    `json:"user_id" gorm:"type:char(36);not null;index"`
	Email      string    `json:"email" gorm:"size:255;not null"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null"`
}
