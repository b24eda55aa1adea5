package models

import "time"

// Moderation status values shared by submissions, comments and reviews.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// CodeSubmission is a promo code submitted by a visitor, held for review.
// WhopID is set when the submitter picked a listed product; otherwise WhopName
// carries free text to be matched during review.
type CodeSubmission struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	WhopID         *uint      `gorm:"index" json:"whop_id"`
	WhopName       string     `gorm:"size:255" json:"whop_name"`
	Code           string     `gorm:"size:64;not null" json:"code"`
	Note           string     `gorm:"size:512" json:"note"`
	SubmitterEmail string     `gorm:"size:255" json:"submitter_email"`
	SubmitterIP    string     `gorm:"size:45" json:"-"`
	Status         string     `gorm:"size:16;default:'pending';index" json:"status"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
