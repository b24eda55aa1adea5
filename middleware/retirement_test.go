package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func retirementTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whops/:slug", RetirementGuard(nil), func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "detail")
	})
	return r
}

func TestRetirementGuardPassesLiveSlug(t *testing.T) {
	setRetirementRulesForTest(map[string]retirementRule{
		"dead-product": {},
	})
	r := retirementTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/whops/live-product", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "detail", w.Body.String())
}

func TestRetirementGuardGone(t *testing.T) {
	setRetirementRulesForTest(map[string]retirementRule{
		"dead-product": {},
	})
	r := retirementTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/whops/dead-product", nil))

	assert.Equal(t, http.StatusGone, w.Code)
}

func TestRetirementGuardRedirect(t *testing.T) {
	setRetirementRulesForTest(map[string]retirementRule{
		"old-product": {RedirectSlug: "new-product"},
	})
	r := retirementTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/whops/old-product", nil))

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/whops/new-product", w.Header().Get("Location"))
}

func TestInvalidateRetirementRulesForcesReload(t *testing.T) {
	setRetirementRulesForTest(map[string]retirementRule{})

	retirementMu.RLock()
	loaded := retirementLoaded
	retirementMu.RUnlock()
	assert.False(t, loaded.IsZero())

	InvalidateRetirementRules()

	retirementMu.RLock()
	loaded = retirementLoaded
	retirementMu.RUnlock()
	assert.True(t, loaded.IsZero())
}
