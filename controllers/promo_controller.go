package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// PromoController covers promo codes: the public reveal flow, visitor
// submissions with abuse hardening, and the admin code/moderation surface.
type PromoController struct {
	db *gorm.DB
}

// NewPromoController creates a new PromoController instance.
func NewPromoController(db *gorm.DB) *PromoController {
	return &PromoController{db: db}
}

// RevealCode returns the code string and affiliate URL, bumping the reveal
// counter. The row is locked inside the transaction so concurrent reveals
// cannot lose counts.
func (p *PromoController) RevealCode(ctx *gin.Context) {
	slug := ctx.Param("slug")
	codeID := ctx.Param("id")

	var whop models.Whop
	if err := p.db.Where("slug = ?", slug).First(&whop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load listing")
		return
	}

	var promo models.PromoCode
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND whop_id = ?", codeID, whop.ID).First(&promo).Error; err != nil {
			return err
		}
		now := time.Now()
		if !codeRevealable(promo, now) {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&promo).Updates(map[string]interface{}{
			"reveal_count":     gorm.Expr("reveal_count + 1"),
			"last_revealed_at": &now,
		}).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "code not found or inactive")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to reveal code")
		return
	}

	utils.Success(ctx, gin.H{
		"code":          promo.Code,
		"affiliate_url": whop.AffiliateURL,
	})
}

// SubmitCode accepts a visitor promo code submission into the review queue.
func (p *PromoController) SubmitCode(ctx *gin.Context) {
	var req struct {
		WhopID        *uint  `json:"whop_id"`
		WhopName      string `json:"whop_name"`
		Code          string `json:"code" binding:"required,min=2,max=64"`
		Note          string `json:"note"`
		Email         string `json:"email"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	ip := ctx.ClientIP()
	if utils.SubmissionIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "too many attempts, try again later")
		return
	}
	if !utils.SubmissionCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "please wait before submitting again")
		return
	}
	if !utils.SubmissionDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42921, "daily submission limit reached")
		return
	}

	if config.Get().SubmitCaptchaEnabled {
		if !utils.VerifyCaptcha(strings.TrimSpace(req.CaptchaID), strings.TrimSpace(req.CaptchaAnswer)) {
			p.recordSubmitFailure(ip)
			utils.Error(ctx, http.StatusBadRequest, 40042, "captcha mismatch or expired")
			return
		}
	}

	whopName := utils.SanitizeText(req.WhopName)
	if req.WhopID != nil {
		var whop models.Whop
		if err := p.db.First(&whop, *req.WhopID).Error; err != nil {
			p.recordSubmitFailure(ip)
			utils.Error(ctx, http.StatusBadRequest, 40043, "unknown listing")
			return
		}
		whopName = whop.Name
	} else if whopName == "" {
		p.recordSubmitFailure(ip)
		utils.Error(ctx, http.StatusBadRequest, 40044, "whop_id or whop_name is required")
		return
	}

	submission := models.CodeSubmission{
		WhopID:         req.WhopID,
		WhopName:       whopName,
		Code:           strings.ToUpper(utils.SanitizeText(req.Code)),
		Note:           utils.SanitizeText(req.Note),
		SubmitterEmail: strings.TrimSpace(req.Email),
		SubmitterIP:    ip,
		Status:         models.StatusPending,
	}
	if err := p.db.Create(&submission).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to save submission")
		return
	}

	utils.SubmissionDailyIncrement(ip)
	utils.Success(ctx, gin.H{"message": "submission received, pending review", "id": submission.ID})
}

func (p *PromoController) recordSubmitFailure(ip string) {
	fails := utils.SubmissionFailRecord(ip)
	if limit := config.Get().SubmitFailedMaxPerIPPerHour; limit > 0 && fails >= limit {
		utils.SubmissionBan(ip)
	}
}

type promoRequest struct {
	WhopID        uint   `json:"whop_id" binding:"required"`
	Code          string `json:"code" binding:"required,min=2,max=64"`
	Title         string `json:"title"`
	DiscountType  string `json:"discount_type"`
	DiscountValue string `json:"discount_value"`
	Status        string `json:"status"`
	Verified      *bool  `json:"verified"`
	ExpiresAt     string `json:"expires_at"`
}

// CreateCode adds a promo code to a listing (admin).
func (p *PromoController) CreateCode(ctx *gin.Context) {
	var req promoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid request payload")
		return
	}

	var whop models.Whop
	if err := p.db.First(&whop, req.WhopID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "unknown listing")
		return
	}

	promo := models.PromoCode{
		WhopID:       whop.ID,
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Title:        utils.SanitizeText(req.Title),
		DiscountType: models.DiscountPercent,
		Status:       models.CodeStatusActive,
		Source:       models.CodeSourceAdmin,
	}
	if err := applyPromoFields(&promo, req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40046, err.Error())
		return
	}

	if err := p.db.Create(&promo).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create code")
		return
	}

	p.invalidateCodeCaches(whop.Slug)
	utils.Success(ctx, gin.H{"code": promo})
}

// UpdateCode edits an existing promo code (admin).
func (p *PromoController) UpdateCode(ctx *gin.Context) {
	var req promoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid request payload")
		return
	}

	var promo models.PromoCode
	if err := p.db.First(&promo, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "code not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to load code")
		return
	}

	promo.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	promo.Title = utils.SanitizeText(req.Title)
	if err := applyPromoFields(&promo, req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40046, err.Error())
		return
	}

	if err := p.db.Save(&promo).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to update code")
		return
	}

	p.invalidateCodeCachesByWhopID(promo.WhopID)
	utils.Success(ctx, gin.H{"code": promo})
}

// DeleteCode removes a promo code (admin).
func (p *PromoController) DeleteCode(ctx *gin.Context) {
	var promo models.PromoCode
	if err := p.db.First(&promo, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40404, "code not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to load code")
		return
	}

	if err := p.db.Delete(&promo).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to delete code")
		return
	}

	p.invalidateCodeCachesByWhopID(promo.WhopID)
	utils.Success(ctx, gin.H{"message": "code deleted"})
}

// ListCodes returns promo codes, optionally filtered by listing or status (admin).
func (p *PromoController) ListCodes(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := p.db.Model(&models.PromoCode{})
	if whopID := strings.TrimSpace(ctx.Query("whop_id")); whopID != "" {
		query = query.Where("whop_id = ?", whopID)
	}
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		if !models.ValidCodeStatus(status) {
			utils.Error(ctx, http.StatusBadRequest, 40047, "invalid status filter")
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to count codes")
		return
	}
	var codes []models.PromoCode
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&codes).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to list codes")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      codes,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ListSubmissions returns the submission review queue (admin).
func (p *PromoController) ListSubmissions(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))
	if status == "" {
		status = models.StatusPending
	}

	query := p.db.Model(&models.CodeSubmission{}).Where("status = ?", status)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to count submissions")
		return
	}
	var submissions []models.CodeSubmission
	if err := query.Order("created_at ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&submissions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list submissions")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      submissions,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ReviewSubmission approves or rejects a visitor submission (admin).
// Approval materializes a live promo code on the resolved listing.
func (p *PromoController) ReviewSubmission(ctx *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		WhopID *uint  `json:"whop_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40048, "invalid request payload")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		utils.Error(ctx, http.StatusBadRequest, 40049, "action must be approve or reject")
		return
	}

	var submission models.CodeSubmission
	if err := p.db.First(&submission, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40405, "submission not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load submission")
		return
	}
	if submission.Status != models.StatusPending {
		utils.Error(ctx, http.StatusConflict, 40902, "submission already reviewed")
		return
	}

	now := time.Now()
	if req.Action == "reject" {
		submission.Status = models.StatusRejected
		submission.ReviewedAt = &now
		if err := p.db.Save(&submission).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to update submission")
			return
		}
		utils.Success(ctx, gin.H{"submission": submission})
		return
	}

	// Approve: the reviewer can override the target listing; otherwise the
	// submission must already reference one.
	whopID := submission.WhopID
	if req.WhopID != nil {
		whopID = req.WhopID
	}
	if whopID == nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "submission has no listing, pass whop_id")
		return
	}
	var whop models.Whop
	if err := p.db.First(&whop, *whopID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "unknown listing")
		return
	}

	var promo models.PromoCode
	err := p.db.Transaction(func(tx *gorm.DB) error {
		submission.Status = models.StatusApproved
		submission.WhopID = &whop.ID
		submission.ReviewedAt = &now
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}
		promo = models.PromoCode{
			WhopID:       whop.ID,
			Code:         submission.Code,
			Title:        submission.Note,
			DiscountType: models.DiscountPercent,
			Status:       models.CodeStatusActive,
			Source:       models.CodeSourceSubmission,
		}
		return tx.Create(&promo).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to approve submission")
		return
	}

	p.invalidateCodeCaches(whop.Slug)
	utils.Success(ctx, gin.H{"submission": submission, "code": promo})
}

// ImportCodes ingests a CSV upload of promo codes (admin). Rows are matched to
// listings by exact slug or name, then fuzzy name similarity. Pass dry_run=true
// to preview the matching without writing.
func (p *PromoController) ImportCodes(ctx *gin.Context) {
	file, _, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "no csv file uploaded")
		return
	}
	defer file.Close()

	dryRun := ctx.Query("dry_run") == "true" || ctx.PostForm("dry_run") == "true"

	report, err := utils.ImportCodesCSV(p.db, file, dryRun, utils.DefaultFuzzyThreshold)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"report": report})
}

func applyPromoFields(promo *models.PromoCode, req promoRequest) error {
	if req.DiscountType != "" {
		if !models.ValidDiscountType(req.DiscountType) {
			return errors.New("invalid discount type")
		}
		promo.DiscountType = req.DiscountType
	}
	if req.DiscountValue != "" {
		d, err := decimal.NewFromString(req.DiscountValue)
		if err != nil {
			return errors.New("invalid discount value")
		}
		promo.DiscountValue = d
	}
	if req.Status != "" {
		if !models.ValidCodeStatus(req.Status) {
			return errors.New("invalid code status")
		}
		promo.Status = req.Status
	}
	if req.Verified != nil {
		promo.Verified = *req.Verified
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return errors.New("expires_at must be RFC3339")
		}
		promo.ExpiresAt = &t
	}
	return nil
}

// codeRevealable reports whether a code may be handed out. A code past its
// expiry counts as dead even when the background sweeper has not flipped its
// status to expired yet.
func codeRevealable(promo models.PromoCode, now time.Time) bool {
	if promo.Status != models.CodeStatusActive {
		return false
	}
	return promo.ExpiresAt == nil || promo.ExpiresAt.After(now)
}

func (p *PromoController) invalidateCodeCaches(slug string) {
	utils.InvalidateByPrefix("cache:whops:")
	utils.InvalidateByPrefix("cache:whop:detail:" + slug)
}

func (p *PromoController) invalidateCodeCachesByWhopID(whopID uint) {
	var whop models.Whop
	if err := p.db.Select("slug").First(&whop, whopID).Error; err == nil {
		p.invalidateCodeCaches(whop.Slug)
		return
	}
	utils.InvalidateByPrefix("cache:whops:")
	utils.InvalidateByPrefix("cache:whop:detail:")
}
