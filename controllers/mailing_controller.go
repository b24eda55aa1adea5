package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// MailingController implements the double opt-in mailing list: subscribe sends
// a confirmation mail, subscription activates only via the mailed token.
type MailingController struct {
	db *gorm.DB
}

// NewMailingController creates a new MailingController instance.
func NewMailingController(db *gorm.DB) *MailingController {
	return &MailingController{db: db}
}

// Subscribe registers an email as pending and mails the confirmation link.
func (m *MailingController) Subscribe(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid email address")
		return
	}
	email := strings.ToLower(addr.Address)

	// Per-address cooldown so the form cannot be used to flood a mailbox.
	if !utils.EmailCooldownTrySet(email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "please wait before trying again")
		return
	}

	var sub models.Subscriber
	err = m.db.Where("email = ?", email).First(&sub).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		sub = models.Subscriber{
			Email:            email,
			Status:           models.SubStatusPending,
			ConfirmToken:     uuid.NewString(),
			UnsubscribeToken: uuid.NewString(),
			SignupIP:         ctx.ClientIP(),
		}
		if err := m.db.Create(&sub).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to save subscription")
			return
		}
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to look up subscription")
		return
	case sub.Status == models.SubStatusSubscribed:
		// Do not leak membership; answer the same as a fresh signup.
		utils.Success(ctx, gin.H{"message": "confirmation mail sent"})
		return
	default:
		// Pending or previously unsubscribed: rotate the confirm token and retry.
		sub.Status = models.SubStatusPending
		sub.ConfirmToken = uuid.NewString()
		if err := m.db.Save(&sub).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to save subscription")
			return
		}
	}

	cfg := config.Get()
	link := fmt.Sprintf("%s/api/v1/mailing/confirm?token=%s", cfg.SiteBaseURL, sub.ConfirmToken)
	subject := fmt.Sprintf("Confirm your %s subscription", cfg.SiteName)
	body := fmt.Sprintf("Click the link below to confirm your subscription:\n\n%s\n\nIf you did not request this, ignore this mail.", link)
	if err := utils.SendMail(email, subject, body); err != nil {
		utils.Sugar.Warnf("subscription mail to %s failed: %v", email, err)
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to send confirmation mail")
		return
	}

	utils.Success(ctx, gin.H{"message": "confirmation mail sent"})
}

// Confirm activates a subscription via the mailed token.
func (m *MailingController) Confirm(ctx *gin.Context) {
	token := strings.TrimSpace(ctx.Query("token"))
	if token == "" {
		utils.Error(ctx, http.StatusBadRequest, 40092, "missing token")
		return
	}

	var sub models.Subscriber
	if err := m.db.Where("confirm_token = ? AND status = ?", token, models.SubStatusPending).First(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "invalid or already used token")
		return
	}

	now := time.Now()
	sub.Status = models.SubStatusSubscribed
	sub.ConfirmedAt = &now
	sub.ConfirmToken = ""
	if err := m.db.Save(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to confirm subscription")
		return
	}

	utils.Success(ctx, gin.H{"message": "subscription confirmed"})
}

// Unsubscribe deactivates a subscription via its permanent token.
func (m *MailingController) Unsubscribe(ctx *gin.Context) {
	token := strings.TrimSpace(ctx.Query("token"))
	if token == "" {
		utils.Error(ctx, http.StatusBadRequest, 40092, "missing token")
		return
	}

	var sub models.Subscriber
	if err := m.db.Where("unsubscribe_token = ?", token).First(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "invalid token")
		return
	}

	sub.Status = models.SubStatusUnsubscribed
	if err := m.db.Save(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to unsubscribe")
		return
	}

	utils.Success(ctx, gin.H{"message": "unsubscribed"})
}

// ListSubscribers returns the mailing list (admin).
func (m *MailingController) ListSubscribers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := m.db.Model(&models.Subscriber{})
	if status := strings.TrimSpace(ctx.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to count subscribers")
		return
	}
	var subs []models.Subscriber
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&subs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to list subscribers")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      subs,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ExportSubscribers streams confirmed subscribers as CSV (admin).
func (m *MailingController) ExportSubscribers(ctx *gin.Context) {
	var subs []models.Subscriber
	if err := m.db.Where("status = ?", models.SubStatusSubscribed).Order("created_at ASC").Find(&subs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to load subscribers")
		return
	}

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="subscribers.csv"`)

	w := csv.NewWriter(ctx.Writer)
	_ = w.Write([]string{"email", "confirmed_at", "created_at"})
	for _, s := range subs {
		confirmed := ""
		if s.ConfirmedAt != nil {
			confirmed = s.ConfirmedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{s.Email, confirmed, s.CreatedAt.Format(time.RFC3339)})
	}
	w.Flush()
}
