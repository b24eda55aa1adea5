package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// CommentController handles guest comments on listings and blog posts,
// one-vote-per-visitor scoring, and the admin moderation queue.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListComments returns the approved comment tree for a target.
func (c *CommentController) ListComments(ctx *gin.Context) {
	targetType := ctx.Query("target_type")
	targetID := strings.TrimSpace(ctx.Query("target_id"))
	if !validCommentTarget(targetType) || targetID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40070, "target_type and target_id are required")
		return
	}

	var comments []models.Comment
	err := c.db.Where("target_type = ? AND target_id = ? AND parent_id IS NULL AND status = ?",
		targetType, targetID, models.StatusApproved).
		Preload("Replies", "status = ?", models.StatusApproved).
		Order("score DESC, created_at ASC").
		Find(&comments).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{"items": comments})
}

// CreateComment accepts a guest comment into the moderation queue.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		TargetType string `json:"target_type" binding:"required"`
		TargetID   uint   `json:"target_id" binding:"required"`
		ParentID   *uint  `json:"parent_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Content    string `json:"content" binding:"required,min=2"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid request payload")
		return
	}
	if !validCommentTarget(req.TargetType) {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid target type")
		return
	}

	if err := c.targetExists(req.TargetType, req.TargetID); err != nil {
		utils.Error(ctx, http.StatusNotFound, 40407, "comment target not found")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, "content cannot be empty")
		return
	}

	// Replies attach to a top-level approved comment on the same target;
	// threading is one level deep.
	if req.ParentID != nil {
		var parent models.Comment
		if err := c.db.First(&parent, *req.ParentID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40074, "parent comment not found")
			return
		}
		if parent.TargetType != req.TargetType || parent.TargetID != req.TargetID || parent.ParentID != nil {
			utils.Error(ctx, http.StatusBadRequest, 40075, "invalid parent comment")
			return
		}
	}

	comment := models.Comment{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ParentID:   req.ParentID,
		GuestName:  utils.SanitizeText(req.Name),
		GuestEmail: strings.TrimSpace(req.Email),
		Content:    content,
		Status:     models.StatusPending,
	}
	if comment.GuestName == "" {
		comment.GuestName = "anonymous"
	}

	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment received, pending review", "id": comment.ID})
}

// VoteComment records an up/down vote keyed by visitor fingerprint. A second
// vote from the same fingerprint changes the previous one instead of stacking.
func (c *CommentController) VoteComment(ctx *gin.Context) {
	var req struct {
		Value int `json:"value" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || (req.Value != 1 && req.Value != -1) {
		utils.Error(ctx, http.StatusBadRequest, 40076, "value must be 1 or -1")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40408, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load comment")
		return
	}
	if comment.Status != models.StatusApproved {
		utils.Error(ctx, http.StatusForbidden, 40302, "comment is not votable")
		return
	}

	fingerprint := voterFingerprint(ctx)
	var newScore int64
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentVote
		err := tx.Where("comment_id = ? AND fingerprint = ?", comment.ID, fingerprint).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&models.CommentVote{
				CommentID:   comment.ID,
				Fingerprint: fingerprint,
				Value:       req.Value,
			}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Value == req.Value:
			// Same vote again retracts it.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		default:
			existing.Value = req.Value
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		}

		// Recompute from votes; cheap at comment scale and immune to drift.
		if err := tx.Model(&models.CommentVote{}).
			Where("comment_id = ?", comment.ID).
			Select("COALESCE(SUM(value),0)").Scan(&newScore).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).Update("score", newScore).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to record vote")
		return
	}

	utils.Success(ctx, gin.H{"score": newScore})
}

// ListPendingComments returns the moderation queue (admin).
func (c *CommentController) ListPendingComments(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))
	if status == "" {
		status = models.StatusPending
	}

	query := c.db.Model(&models.Comment{}).Where("status = ?", status)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to count comments")
		return
	}
	var comments []models.Comment
	if err := query.Order("created_at ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      comments,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ModerateComment approves or rejects a pending comment (admin).
func (c *CommentController) ModerateComment(ctx *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40077, "invalid request payload")
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		utils.Error(ctx, http.StatusBadRequest, 40078, "action must be approve or reject")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40408, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to load comment")
		return
	}

	if req.Action == "approve" {
		comment.Status = models.StatusApproved
	} else {
		comment.Status = models.StatusRejected
	}
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to update comment")
		return
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment and its replies (admin).
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40408, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50078, "failed to load comment")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentVote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50079, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

func validCommentTarget(t string) bool {
	return t == models.CommentTargetWhop || t == models.CommentTargetBlog
}

func (c *CommentController) targetExists(targetType string, targetID uint) error {
	switch targetType {
	case models.CommentTargetWhop:
		return c.db.Select("id").First(&models.Whop{}, targetID).Error
	case models.CommentTargetBlog:
		return c.db.Select("id").First(&models.BlogPost{}, targetID).Error
	}
	return gorm.ErrRecordNotFound
}
