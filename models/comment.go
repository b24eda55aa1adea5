package models

import "time"

// Comment target kinds.
const (
	CommentTargetWhop = "whop"
	CommentTargetBlog = "blog"
)

// Comment is a visitor comment on a whop page or blog post. Threading is a
// single level deep via ParentID. Comments are held pending until moderated.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TargetType string    `gorm:"size:8;index:idx_comments_target;not null" json:"target_type"`
	TargetID   uint      `gorm:"index:idx_comments_target;not null" json:"target_id"`
	ParentID   *uint     `gorm:"index" json:"parent_id"`
	GuestName  string    `gorm:"size:64" json:"guest_name"`
	GuestEmail string    `gorm:"size:255" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Status     string    `gorm:"size:16;default:'pending';index" json:"status"`
	Score      int64     `gorm:"default:0" json:"score"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Replies    []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}

// CommentVote records a single up/down vote per visitor fingerprint.
type CommentVote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommentID   uint      `gorm:"index:idx_vote_comment_voter,unique;not null" json:"comment_id"`
	Fingerprint string    `gorm:"size:64;index:idx_vote_comment_voter,unique;not null" json:"-"`
	Value       int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt   time.Time `json:"created_at"`
}
