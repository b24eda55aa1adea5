package models

import "time"

// Subscriber status values.
const (
	SubStatusPending      = "pending"
	SubStatusSubscribed   = "subscribed"
	SubStatusUnsubscribed = "unsubscribed"
)

// Subscriber is a mailing-list entry with double opt-in tokens.
type Subscriber struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Status           string     `gorm:"size:16;default:'pending';index" json:"status"`
	ConfirmToken     string     `gorm:"size:64;index" json:"-"`
	UnsubscribeToken string     `gorm:"size:64;index" json:"-"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
	SignupIP         string     `gorm:"size:45" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
