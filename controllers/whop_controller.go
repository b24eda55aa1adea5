package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/middleware"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// WhopController manages product listings: public browsing plus admin CRUD.
type WhopController struct {
	db *gorm.DB
}

// NewWhopController creates a new WhopController instance.
func NewWhopController(db *gorm.DB) *WhopController {
	return &WhopController{db: db}
}

// ListWhops returns a paginated listing with optional search and category filter.
func (w *WhopController) ListWhops(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	// Cache category/homepage lists when no search term to avoid key explosion
	cacheKey := fmt.Sprintf("cache:whops:list:cat=%s:page=%d:size=%d", category, page, pageSize)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := w.db.Model(&models.Whop{}).Where("retired = ?", false)
	if search != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count listings")
		return
	}

	var whops []models.Whop
	if err := query.Order("rating_avg DESC, rating_count DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&whops).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list listings")
		return
	}

	payload := gin.H{
		"items":      whops,
		"pagination": paginationPayload(page, pageSize, total),
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	}
	utils.Success(ctx, payload)
}

// GetWhop returns one listing by slug with its active promo codes.
// Retired slugs never reach here; the retirement guard answers 301/410 first.
func (w *WhopController) GetWhop(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cacheKey := "cache:whop:detail:" + slug
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var whop models.Whop
	err := w.db.Preload("PromoCodes", "status = ?", models.CodeStatusActive).
		Where("slug = ?", slug).First(&whop).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load listing")
		return
	}

	// Codes stay masked until revealed; only metadata is public here.
	codes := make([]gin.H, 0, len(whop.PromoCodes))
	for _, c := range whop.PromoCodes {
		codes = append(codes, maskedCode(c))
	}

	payload := gin.H{"whop": whop, "codes": codes}
	utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

// ListAlternatives recommends similar listings ranked by topic overlap.
func (w *WhopController) ListAlternatives(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cacheKey := "cache:whops:alternatives:" + slug
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var whop models.Whop
	if err := w.db.Where("slug = ?", slug).First(&whop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load listing")
		return
	}

	var candidates []models.Whop
	if err := w.db.Where("retired = ? AND id <> ?", false, whop.ID).Find(&candidates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load candidates")
		return
	}

	type scored struct {
		Whop  models.Whop `json:"whop"`
		Score float64     `json:"score"`
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		score := utils.TopicSimilarity(whop.Topics, c.Topics)
		// Same category is a weak signal when topics are sparse.
		if score == 0 && whop.Category != "" && c.Category == whop.Category {
			score = 0.1
		}
		if score > 0 {
			ranked = append(ranked, scored{Whop: c, Score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}

	payload := gin.H{"items": ranked}
	utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

// ListCategories returns distinct non-empty categories for navigation.
func (w *WhopController) ListCategories(ctx *gin.Context) {
	cacheKey := "cache:whops:categories"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var categories []string
	if err := w.db.Model(&models.Whop{}).
		Where("retired = ? AND category <> ''", false).
		Distinct("category").Order("category").Pluck("category", &categories).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to list categories")
		return
	}

	payload := gin.H{"items": categories}
	utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

type whopRequest struct {
	Name         string `json:"name" binding:"required,min=1"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Topics       string `json:"topics"`
	AffiliateURL string `json:"affiliate_url"`
	LogoURL      string `json:"logo_url"`
	Price        string `json:"price"`
	Indexable    *bool  `json:"indexable"`
}

// CreateWhop adds a new listing (admin).
func (w *WhopController) CreateWhop(ctx *gin.Context) {
	var req whopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	name := utils.SanitizeText(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name cannot be empty")
		return
	}

	slug := utils.UniqueSlug(utils.Slugify(name), func(candidate string) bool {
		var count int64
		w.db.Model(&models.Whop{}).Where("slug = ?", candidate).Count(&count)
		return count > 0
	})

	whop := models.Whop{
		Name:         name,
		Slug:         slug,
		Description:  utils.Sanitize(req.Description),
		Category:     utils.SanitizeText(req.Category),
		Topics:       utils.SanitizeText(req.Topics),
		AffiliateURL: strings.TrimSpace(req.AffiliateURL),
		LogoURL:      strings.TrimSpace(req.LogoURL),
		Price:        utils.SanitizeText(req.Price),
		Indexable:    true,
	}
	if req.Indexable != nil {
		whop.Indexable = *req.Indexable
	}

	if err := w.db.Create(&whop).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to create listing")
		return
	}

	w.invalidateWhopCaches(whop.Slug)
	utils.Success(ctx, gin.H{"whop": whop})
}

// UpdateWhop edits listing fields (admin). The slug is stable once created so
// published URLs do not break; renames keep the original slug.
func (w *WhopController) UpdateWhop(ctx *gin.Context) {
	var req whopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	var whop models.Whop
	if err := w.db.First(&whop, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load listing")
		return
	}

	name := utils.SanitizeText(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "name cannot be empty")
		return
	}

	whop.Name = name
	whop.Description = utils.Sanitize(req.Description)
	whop.Category = utils.SanitizeText(req.Category)
	whop.Topics = utils.SanitizeText(req.Topics)
	whop.AffiliateURL = strings.TrimSpace(req.AffiliateURL)
	whop.LogoURL = strings.TrimSpace(req.LogoURL)
	whop.Price = utils.SanitizeText(req.Price)
	if req.Indexable != nil {
		whop.Indexable = *req.Indexable
	}

	if err := w.db.Save(&whop).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to update listing")
		return
	}

	w.invalidateWhopCaches(whop.Slug)
	utils.Success(ctx, gin.H{"whop": whop})
}

// DeleteWhop removes a listing and its codes (admin). Prefer retirement for
// listings that ever had traffic; deletion is for mistakes.
func (w *WhopController) DeleteWhop(ctx *gin.Context) {
	var whop models.Whop
	if err := w.db.First(&whop, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load listing")
		return
	}

	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("whop_id = ?", whop.ID).Delete(&models.PromoCode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&whop).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete listing")
		return
	}

	w.invalidateWhopCaches(whop.Slug)
	utils.Success(ctx, gin.H{"message": "listing deleted"})
}

// AdminListWhops returns all listings including retired ones (admin).
func (w *WhopController) AdminListWhops(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := w.db.Model(&models.Whop{})
	if search != "" {
		query = query.Where("name LIKE ? OR slug LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count listings")
		return
	}
	var whops []models.Whop
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&whops).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to list listings")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      whops,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

func (w *WhopController) invalidateWhopCaches(slug string) {
	utils.InvalidateByPrefix("cache:whops:")
	utils.InvalidateByPrefix("cache:whop:detail:" + slug)
	utils.InvalidateByPrefix("cache:sitemap:")
	middleware.InvalidateRetirementRules()
}

// maskedCode exposes code metadata without the code string itself.
func maskedCode(c models.PromoCode) gin.H {
	return gin.H{
		"id":             c.ID,
		"title":          c.Title,
		"discount_type":  c.DiscountType,
		"discount_value": c.DiscountValue,
		"verified":       c.Verified,
		"expires_at":     c.ExpiresAt,
		"reveal_count":   c.RevealCount,
	}
}
