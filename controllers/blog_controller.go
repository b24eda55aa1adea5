package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// BlogController serves published articles and the admin editorial surface.
type BlogController struct {
	db *gorm.DB
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{db: db}
}

// ListPosts returns published posts, newest first (cached).
func (b *BlogController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:blog:list:page=%d:size=%d", page, pageSize)
	if bytes, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", bytes)
		return
	}

	query := b.db.Model(&models.BlogPost{}).Where("published = ?", true)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count posts")
		return
	}
	var posts []models.BlogPost
	if err := query.Preload("Author").Order("published_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list posts")
		return
	}

	payload := gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	}
	utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

// GetPost returns one published post by slug (cached).
func (b *BlogController) GetPost(ctx *gin.Context) {
	slug := ctx.Param("slug")

	cacheKey := "cache:blog:detail:" + slug
	if bytes, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", bytes)
		return
	}

	var post models.BlogPost
	err := b.db.Preload("Author").Where("slug = ? AND published = ?", slug, true).First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load post")
		return
	}

	payload := gin.H{"post": post}
	utils.CacheSetJSON(cacheKey, cacheWrap(payload), time.Hour)
	utils.Success(ctx, payload)
}

type blogRequest struct {
	Title           string `json:"title" binding:"required,min=1"`
	Excerpt         string `json:"excerpt"`
	Content         string `json:"content" binding:"required"`
	CoverURL        string `json:"cover_url"`
	MetaDescription string `json:"meta_description"`
	Keywords        string `json:"keywords"`
	Published       *bool  `json:"published"`
}

// CreatePost adds a new article (admin).
func (b *BlogController) CreatePost(ctx *gin.Context) {
	var req blogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	title := utils.SanitizeText(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "title cannot be empty")
		return
	}

	authorID, _ := getUserID(ctx)
	slug := utils.UniqueSlug(utils.Slugify(title), func(candidate string) bool {
		var count int64
		b.db.Model(&models.BlogPost{}).Where("slug = ?", candidate).Count(&count)
		return count > 0
	})

	post := models.BlogPost{
		AuthorID:        authorID,
		Title:           title,
		Slug:            slug,
		Excerpt:         utils.SanitizeText(req.Excerpt),
		Content:         utils.Sanitize(req.Content),
		CoverURL:        req.CoverURL,
		MetaDescription: utils.SanitizeText(req.MetaDescription),
		Keywords:        utils.SanitizeText(req.Keywords),
	}
	if req.Published != nil && *req.Published {
		now := time.Now()
		post.Published = true
		post.PublishedAt = &now
	}

	if err := b.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to create post")
		return
	}

	b.invalidateBlogCaches(post.Slug)
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost edits an article (admin). First publish stamps PublishedAt.
func (b *BlogController) UpdatePost(ctx *gin.Context) {
	var req blogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load post")
		return
	}

	title := utils.SanitizeText(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "title cannot be empty")
		return
	}

	post.Title = title
	post.Excerpt = utils.SanitizeText(req.Excerpt)
	post.Content = utils.Sanitize(req.Content)
	post.CoverURL = req.CoverURL
	post.MetaDescription = utils.SanitizeText(req.MetaDescription)
	post.Keywords = utils.SanitizeText(req.Keywords)
	if req.Published != nil {
		if *req.Published && !post.Published {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Published = *req.Published
	}

	if err := b.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to update post")
		return
	}

	b.invalidateBlogCaches(post.Slug)
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes an article (admin).
func (b *BlogController) DeletePost(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40406, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to load post")
		return
	}

	if err := b.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to delete post")
		return
	}

	b.invalidateBlogCaches(post.Slug)
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// AdminListPosts returns all posts including drafts (admin).
func (b *BlogController) AdminListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := b.db.Model(&models.BlogPost{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to count posts")
		return
	}
	var posts []models.BlogPost
	if err := b.db.Preload("Author").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to list posts")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      posts,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

func (b *BlogController) invalidateBlogCaches(slug string) {
	utils.InvalidateByPrefix("cache:blog:list:")
	utils.InvalidateByPrefix("cache:blog:detail:" + slug)
	utils.InvalidateByPrefix("cache:sitemap:")
}
