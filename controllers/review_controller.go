package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// ReviewController handles star-rated guest reviews. Approval recomputes the
// listing's rating aggregate.
type ReviewController struct {
	db *gorm.DB
}

// NewReviewController creates a new ReviewController instance.
func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{db: db}
}

// ListReviews returns approved reviews for a listing.
func (r *ReviewController) ListReviews(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var whop models.Whop
	if err := r.db.Where("slug = ?", slug).First(&whop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load listing")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	query := r.db.Model(&models.Review{}).Where("whop_id = ? AND status = ?", whop.ID, models.StatusApproved)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to count reviews")
		return
	}
	var reviews []models.Review
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&reviews).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list reviews")
		return
	}

	utils.Success(ctx, gin.H{
		"items":        reviews,
		"rating_avg":   whop.RatingAvg,
		"rating_count": whop.RatingCount,
		"pagination":   paginationPayload(page, pageSize, total),
	})
}

// CreateReview accepts a guest review into the moderation queue.
func (r *ReviewController) CreateReview(ctx *gin.Context) {
	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Rating int    `json:"rating" binding:"required"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		utils.Error(ctx, http.StatusBadRequest, 40081, "rating must be between 1 and 5")
		return
	}

	var whop models.Whop
	if err := r.db.Where("slug = ?", ctx.Param("slug")).First(&whop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load listing")
		return
	}

	review := models.Review{
		WhopID:     whop.ID,
		GuestName:  utils.SanitizeText(req.Name),
		GuestEmail: strings.TrimSpace(req.Email),
		Rating:     req.Rating,
		Title:      utils.SanitizeText(req.Title),
		Body:       utils.Sanitize(req.Body),
		Status:     models.StatusPending,
	}
	if review.GuestName == "" {
		review.GuestName = "anonymous"
	}

	if err := r.db.Create(&review).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to create review")
		return
	}

	utils.Success(ctx, gin.H{"message": "review received, pending review", "id": review.ID})
}

// ListPendingReviews returns the review moderation queue (admin).
func (r *ReviewController) ListPendingReviews(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))
	if status == "" {
		status = models.StatusPending
	}

	query := r.db.Model(&models.Review{}).Where("status = ?", status)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to count reviews")
		return
	}
	var reviews []models.Review
	if err := query.Order("created_at ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&reviews).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to list reviews")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      reviews,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ModerateReview approves or rejects a review (admin). The listing's rating
// aggregate is recomputed from approved reviews inside the same transaction.
func (r *ReviewController) ModerateReview(ctx *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid request payload")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		utils.Error(ctx, http.StatusBadRequest, 40083, "action must be approve or reject")
		return
	}

	var review models.Review
	if err := r.db.First(&review, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40409, "review not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to load review")
		return
	}

	newStatus := models.StatusApproved
	if req.Action == "reject" {
		newStatus = models.StatusRejected
	}

	var slug string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		review.Status = newStatus
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		return recomputeRating(tx, review.WhopID, &slug)
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50088, "failed to update review")
		return
	}

	utils.InvalidateByPrefix("cache:whops:")
	utils.InvalidateByPrefix("cache:whop:detail:" + slug)
	utils.Success(ctx, gin.H{"review": review})
}

// recomputeRating refreshes a listing's rating aggregate from approved reviews.
func recomputeRating(tx *gorm.DB, whopID uint, slugOut *string) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Where("whop_id = ? AND status = ?", whopID, models.StatusApproved).
		Select("COALESCE(AVG(rating),0) AS avg, COUNT(*) AS count").
		Scan(&agg).Error
	if err != nil {
		return err
	}

	var whop models.Whop
	if err := tx.First(&whop, whopID).Error; err != nil {
		return err
	}
	if slugOut != nil {
		*slugOut = whop.Slug
	}
	return tx.Model(&whop).Updates(map[string]interface{}{
		"rating_avg":   agg.Avg,
		"rating_count": agg.Count,
	}).Error
}
