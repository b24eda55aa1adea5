package controllers

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// ContactController takes contact form submissions into the admin inbox.
type ContactController struct {
	db *gorm.DB
}

// NewContactController creates a new ContactController instance.
func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{db: db}
}

// Captcha returns a fresh captcha id and base64 image (data URI).
func (c *ContactController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"id": id, "image": b64})
}

// SubmitContact stores a contact message after captcha and abuse checks.
func (c *ContactController) SubmitContact(ctx *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required,min=1,max=64"`
		Email         string `json:"email" binding:"required"`
		Subject       string `json:"subject"`
		Body          string `json:"body" binding:"required,min=5"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40100, "invalid request payload")
		return
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid email address")
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

	if config.Get().SubmitCaptchaEnabled {
		if !utils.VerifyCaptcha(strings.TrimSpace(req.CaptchaID), strings.TrimSpace(req.CaptchaAnswer)) {
			fails := utils.SubmissionFailRecord(ip)
			if limit := config.Get().SubmitFailedMaxPerIPPerHour; limit > 0 && fails >= limit {
				utils.SubmissionBan(ip)
			}
			utils.Error(ctx, http.StatusBadRequest, 40042, "captcha mismatch or expired")
			return
		}
	}

	msg := models.ContactMessage{
		Name:     utils.SanitizeText(req.Name),
		Email:    addr.Address,
		Subject:  utils.SanitizeText(req.Subject),
		Body:     utils.SanitizeText(req.Body),
		SenderIP: ip,
	}
	if err := c.db.Create(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to save message")
		return
	}

	utils.Success(ctx, gin.H{"message": "message received", "id": msg.ID})
}

// ListMessages returns the contact inbox (admin).
func (c *ContactController) ListMessages(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.ContactMessage{})
	if v := ctx.Query("handled"); v != "" {
		query = query.Where("handled = ?", v == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to count messages")
		return
	}
	var messages []models.ContactMessage
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&messages).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to list messages")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      messages,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// MarkHandled toggles the handled flag on a message (admin).
func (c *ContactController) MarkHandled(ctx *gin.Context) {
	var req struct {
		Handled *bool `json:"handled" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40102, "invalid request payload")
		return
	}

	var msg models.ContactMessage
	if err := c.db.First(&msg, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40411, "message not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to load message")
		return
	}

	msg.Handled = *req.Handled
	if err := c.db.Save(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to update message")
		return
	}

	utils.Success(ctx, gin.H{"message": msg})
}
