package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// StatsController provides aggregate site statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns public aggregate counts.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var whopCount, codeCount, postCount, reviewCount int64

	// Fall back to 0 instead of failing the whole endpoint
	if err := s.db.Model(&models.Whop{}).Where("retired = ?", false).Count(&whopCount).Error; err != nil {
		whopCount = 0
	}
	if err := s.db.Model(&models.PromoCode{}).Where("status = ?", models.CodeStatusActive).Count(&codeCount).Error; err != nil {
		codeCount = 0
	}
	if err := s.db.Model(&models.BlogPost{}).Where("published = ?", true).Count(&postCount).Error; err != nil {
		postCount = 0
	}
	if err := s.db.Model(&models.Review{}).Where("status = ?", models.StatusApproved).Count(&reviewCount).Error; err != nil {
		reviewCount = 0
	}

	utils.Success(ctx, gin.H{
		"whop_count":   whopCount,
		"code_count":   codeCount,
		"post_count":   postCount,
		"review_count": reviewCount,
	})
}

// GetAdminStats returns back-office dashboard numbers: moderation queue sizes,
// subscriber counts and recent traffic.
func (s *StatsController) GetAdminStats(ctx *gin.Context) {
	var pendingSubmissions, pendingComments, pendingReviews, unhandledContacts, subscriberCount int64

	_ = s.db.Model(&models.CodeSubmission{}).Where("status = ?", models.StatusPending).Count(&pendingSubmissions).Error
	_ = s.db.Model(&models.Comment{}).Where("status = ?", models.StatusPending).Count(&pendingComments).Error
	_ = s.db.Model(&models.Review{}).Where("status = ?", models.StatusPending).Count(&pendingReviews).Error
	_ = s.db.Model(&models.ContactMessage{}).Where("handled = ?", false).Count(&unhandledContacts).Error
	_ = s.db.Model(&models.Subscriber{}).Where("status = ?", models.SubStatusSubscribed).Count(&subscriberCount).Error

	// Last 7 days of page views, summed per day.
	type dayViews struct {
		Date  string `json:"date"`
		Views int64  `json:"views"`
	}
	var traffic []dayViews
	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date >= ?", since).
		Select("DATE_FORMAT(date, '%Y-%m-%d') AS date, SUM(count) AS views").
		Group("date").Order("date ASC").
		Scan(&traffic).Error; err != nil {
		traffic = nil
	}

	// Today's total, string date equality to avoid timezone/type mismatches
	var todayViews int64
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&todayViews).Error; err != nil {
		todayViews = 0
	}

	utils.Success(ctx, gin.H{
		"pending_submissions": pendingSubmissions,
		"pending_comments":    pendingComments,
		"pending_reviews":     pendingReviews,
		"unhandled_contacts":  unhandledContacts,
		"subscriber_count":    subscriberCount,
		"today_views":         todayViews,
		"traffic":             traffic,
	})
}
