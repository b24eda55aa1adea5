package models

import "time"

// Review is a star-rated visitor review of a Whop, moderated like comments.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	WhopID     uint      `gorm:"index;not null" json:"whop_id"`
	GuestName  string    `gorm:"size:64" json:"guest_name"`
	GuestEmail string    `gorm:"size:255" json:"-"`
	Rating     int       `gorm:"not null" json:"rating"` // 1..5
	Title      string    `gorm:"size:255" json:"title"`
	Body       string    `gorm:"type:text" json:"body"`
	Status     string    `gorm:"size:16;default:'pending';index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
