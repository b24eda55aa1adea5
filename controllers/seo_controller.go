package controllers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/middleware"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// SEOController renders sitemaps and robots.txt and exposes the admin surface
// for indexing and retirement flags.
type SEOController struct {
	db *gorm.DB
}

// NewSEOController creates a new SEOController instance.
func NewSEOController(db *gorm.DB) *SEOController {
	return &SEOController{db: db}
}

type sitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name       `xml:"urlset"`
	Xmlns   string         `xml:"xmlns,attr"`
	URLs    []sitemapEntry `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Xmlns    string         `xml:"xmlns,attr"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

const sitemapXmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// buildSitemapIndex renders the index XML referencing numbered sitemap pages.
func buildSitemapIndex(baseURL string, pages int) ([]byte, error) {
	idx := sitemapIndex{Xmlns: sitemapXmlns}
	for i := 1; i <= pages; i++ {
		idx.Sitemaps = append(idx.Sitemaps, sitemapEntry{
			Loc: fmt.Sprintf("%s/sitemaps/%d.xml", baseURL, i),
		})
	}
	out, err := xml.MarshalIndent(idx, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// buildURLSet renders one urlset page.
func buildURLSet(entries []sitemapEntry) ([]byte, error) {
	set := urlSet{Xmlns: sitemapXmlns, URLs: entries}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// sitemapPageCount derives the number of pages from the entry total.
func sitemapPageCount(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// SitemapIndex serves /sitemap.xml.
func (s *SEOController) SitemapIndex(ctx *gin.Context) {
	cacheKey := "cache:sitemap:index"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/xml", b)
		return
	}

	cfg := config.Get()
	total, err := s.countSitemapEntries()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to count sitemap entries")
		return
	}

	pages := sitemapPageCount(total, cfg.SitemapPageSize)
	out, err := buildSitemapIndex(strings.TrimRight(cfg.SiteBaseURL, "/"), pages)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50111, "failed to render sitemap index")
		return
	}

	utils.CacheSetBytes(cacheKey, out, time.Hour)
	ctx.Data(http.StatusOK, "application/xml", out)
}

// SitemapPage serves /sitemaps/:page (e.g. /sitemaps/2.xml).
// Entries are whop and blog URLs ordered by kind then ID so paging is stable.
func (s *SEOController) SitemapPage(ctx *gin.Context) {
	pageStr := strings.TrimSuffix(ctx.Param("page"), ".xml")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		utils.Error(ctx, http.StatusNotFound, 40412, "sitemap page not found")
		return
	}

	cacheKey := fmt.Sprintf("cache:sitemap:page:%d", page)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/xml", b)
		return
	}

	cfg := config.Get()
	base := strings.TrimRight(cfg.SiteBaseURL, "/")
	pageSize := cfg.SitemapPageSize
	offset := (page - 1) * pageSize

	entries := make([]sitemapEntry, 0, pageSize)

	var whopTotal int64
	if err := s.indexableWhops().Count(&whopTotal).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50112, "failed to count listings")
		return
	}

	// Whop entries fill the front of the sequence, blog entries follow.
	if int64(offset) < whopTotal {
		var whops []models.Whop
		if err := s.indexableWhops().Select("slug", "updated_at").Order("id ASC").
			Offset(offset).Limit(pageSize).Find(&whops).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50113, "failed to load listings")
			return
		}
		for _, w := range whops {
			entries = append(entries, sitemapEntry{
				Loc:     base + "/whops/" + w.Slug,
				LastMod: w.UpdatedAt.Format("2006-01-02"),
			})
		}
	}

	if remaining := pageSize - len(entries); remaining > 0 {
		blogOffset := offset - int(whopTotal)
		if blogOffset < 0 {
			blogOffset = 0
		}
		var posts []models.BlogPost
		if err := s.db.Model(&models.BlogPost{}).Where("published = ?", true).
			Select("slug", "updated_at").Order("id ASC").
			Offset(blogOffset).Limit(remaining).Find(&posts).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50114, "failed to load posts")
			return
		}
		for _, p := range posts {
			entries = append(entries, sitemapEntry{
				Loc:     base + "/blog/" + p.Slug,
				LastMod: p.UpdatedAt.Format("2006-01-02"),
			})
		}
	}

	if len(entries) == 0 {
		utils.Error(ctx, http.StatusNotFound, 40412, "sitemap page not found")
		return
	}

	out, err := buildURLSet(entries)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50115, "failed to render sitemap")
		return
	}

	utils.CacheSetBytes(cacheKey, out, time.Hour)
	ctx.Data(http.StatusOK, "application/xml", out)
}

// Robots serves robots.txt: admin and API paths are closed to crawlers, the
// sitemap is advertised.
func (s *SEOController) Robots(ctx *gin.Context) {
	cfg := config.Get()
	base := strings.TrimRight(cfg.SiteBaseURL, "/")

	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Allow: /\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + base + "/sitemap.xml\n")

	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(b.String()))
}

// UpdateSEO changes indexing/retirement flags on a listing (admin).
// A non-empty redirect_slug must name an existing live listing.
func (s *SEOController) UpdateSEO(ctx *gin.Context) {
	var req struct {
		Indexable    *bool   `json:"indexable"`
		Retired      *bool   `json:"retired"`
		RedirectSlug *string `json:"redirect_slug"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40110, "invalid request payload")
		return
	}

	var whop models.Whop
	if err := s.db.First(&whop, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "listing not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50116, "failed to load listing")
		return
	}

	if req.Indexable != nil {
		whop.Indexable = *req.Indexable
	}
	if req.Retired != nil {
		whop.Retired = *req.Retired
		if whop.Retired {
			// Retired pages drop out of the sitemap regardless of the flag.
			whop.Indexable = false
		}
	}
	if req.RedirectSlug != nil {
		target := strings.TrimSpace(*req.RedirectSlug)
		if target != "" {
			if target == whop.Slug {
				utils.Error(ctx, http.StatusBadRequest, 40111, "redirect cannot point at itself")
				return
			}
			var dest models.Whop
			if err := s.db.Where("slug = ? AND retired = ?", target, false).First(&dest).Error; err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40112, "redirect target must be a live listing")
				return
			}
		}
		whop.RedirectSlug = target
	}

	if err := s.db.Select("indexable", "retired", "redirect_slug", "updated_at").Save(&whop).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50117, "failed to update listing")
		return
	}

	utils.InvalidateByPrefix("cache:whops:")
	utils.InvalidateByPrefix("cache:whop:detail:" + whop.Slug)
	utils.InvalidateByPrefix("cache:sitemap:")
	middleware.InvalidateRetirementRules()

	utils.Success(ctx, gin.H{"whop": whop})
}

func (s *SEOController) indexableWhops() *gorm.DB {
	return s.db.Model(&models.Whop{}).Where("indexable = ? AND retired = ?", true, false)
}

func (s *SEOController) countSitemapEntries() (int64, error) {
	var whopTotal, blogTotal int64
	if err := s.indexableWhops().Count(&whopTotal).Error; err != nil {
		return 0, err
	}
	if err := s.db.Model(&models.BlogPost{}).Where("published = ?", true).Count(&blogTotal).Error; err != nil {
		return 0, err
	}
	return whopTotal + blogTotal, nil
}
