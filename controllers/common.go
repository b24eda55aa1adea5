package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/whpcodes/whpcodes/middleware"
)

// cachedResponse mirrors the standard envelope so cached bytes can be served
// verbatim with ctx.Data.
type cachedResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func cacheWrap(data interface{}) cachedResponse {
	return cachedResponse{Code: 0, Message: "success", Data: data}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

// voterFingerprint derives a stable anonymous identity for one-vote-per-visitor
// checks. Prefers an explicit client fingerprint header, falls back to IP+UA.
func voterFingerprint(ctx *gin.Context) string {
	if fp := strings.TrimSpace(ctx.GetHeader("X-Client-Fingerprint")); fp != "" && len(fp) <= 64 {
		return fp
	}
	sum := sha256.Sum256([]byte(ctx.ClientIP() + "|" + ctx.Request.UserAgent()))
	return hex.EncodeToString(sum[:16])
}
