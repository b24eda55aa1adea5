package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promo code status values.
const (
	CodeStatusActive   = "active"
	CodeStatusExpired  = "expired"
	CodeStatusDisabled = "disabled"
)

// Promo code discount types.
const (
	DiscountPercent   = "percent"
	DiscountFixed     = "fixed"
	DiscountFreeTrial = "free_trial"
)

// Promo code provenance.
const (
	CodeSourceAdmin      = "admin"
	CodeSourceImport     = "import"
	CodeSourceSubmission = "submission"
)

// PromoCode is a discount code attached to a Whop.
type PromoCode struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	WhopID         uint            `gorm:"index;not null" json:"whop_id"`
	Code           string          `gorm:"size:64;not null" json:"code"`
	Title          string          `gorm:"size:255" json:"title"`
	DiscountType   string          `gorm:"size:16;default:'percent'" json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_value"`
	Status         string          `gorm:"size:16;default:'active';index" json:"status"`
	Verified       bool            `gorm:"default:false" json:"verified"`
	Source         string          `gorm:"size:16;default:'admin'" json:"source"`
	ExpiresAt      *time.Time      `gorm:"index" json:"expires_at"`
	RevealCount    int64           `gorm:"default:0" json:"reveal_count"`
	LastRevealedAt *time.Time      `json:"last_revealed_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValidDiscountType reports whether t is a known discount type.
func ValidDiscountType(t string) bool {
	switch t {
	case DiscountPercent, DiscountFixed, DiscountFreeTrial:
		return true
	}
	return false
}

// ValidCodeStatus reports whether s is a known promo code status.
func ValidCodeStatus(s string) bool {
	switch s {
	case CodeStatusActive, CodeStatusExpired, CodeStatusDisabled:
		return true
	}
	return false
}
