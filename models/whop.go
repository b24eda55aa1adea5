package models

import "time"

// Whop represents a listed third-party digital product the site promotes.
// SEO flags control sitemap inclusion and retirement behavior for its page.
type Whop struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	Slug         string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"size:64;index" json:"category"`
	Topics       string `gorm:"size:512" json:"topics"` // comma-separated keyword bucket
	AffiliateURL string `gorm:"size:1024" json:"affiliate_url"`
	LogoURL      string `gorm:"size:1024" json:"logo_url"`
	Price        string `gorm:"size:64" json:"price"`

	// Aggregates maintained on review approval.
	RatingAvg   float64 `gorm:"default:0" json:"rating_avg"`
	RatingCount int64   `gorm:"default:0" json:"rating_count"`

	// SEO metadata.
	Indexable    bool   `gorm:"default:true;index" json:"indexable"`
	Retired      bool   `gorm:"default:false;index" json:"retired"`
	RedirectSlug string `gorm:"size:255" json:"redirect_slug"` // 301 target when retired; empty means 410

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Never serialized; detail responses expose codes only through the masked
	// view, the code string itself ships exclusively via the reveal endpoint.
	PromoCodes []PromoCode `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
