package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

// retirementRule describes how a retired listing slug should answer.
// When RedirectSlug is set the old URL moves permanently; otherwise it is gone.
type retirementRule struct {
	RedirectSlug string
}

var (
	retirementRules   = map[string]retirementRule{}
	retirementMu      sync.RWMutex
	retirementLoaded  time.Time
	retirementRefresh = time.Minute
)

// RetirementGuard answers for retired listings before the detail handler runs.
// Retired slugs with a replacement get a 301 to the new slug, the rest get 410.
// Rules are kept in memory and refreshed from the database on a short timer so
// admin edits take effect without a restart.
func RetirementGuard(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		slug := ctx.Param("slug")
		if slug == "" {
			ctx.Next()
			return
		}

		refreshRetirementRules(db, false)

		retirementMu.RLock()
		rule, retired := retirementRules[slug]
		retirementMu.RUnlock()

		if !retired {
			ctx.Next()
			return
		}

		if rule.RedirectSlug != "" {
			ctx.Redirect(http.StatusMovedPermanently, "/whops/"+rule.RedirectSlug)
			ctx.Abort()
			return
		}

		utils.Error(ctx, http.StatusGone, 41001, "this listing has been retired")
		ctx.Abort()
	}
}

// InvalidateRetirementRules forces the next request to reload rules, used by
// the admin handlers right after flipping retirement flags.
func InvalidateRetirementRules() {
	retirementMu.Lock()
	retirementLoaded = time.Time{}
	retirementMu.Unlock()
}

func refreshRetirementRules(db *gorm.DB, force bool) {
	retirementMu.RLock()
	fresh := !force && time.Since(retirementLoaded) < retirementRefresh
	retirementMu.RUnlock()
	if fresh {
		return
	}

	retirementMu.Lock()
	defer retirementMu.Unlock()
	if !force && time.Since(retirementLoaded) < retirementRefresh {
		return
	}

	var rows []models.Whop
	if err := db.Select("slug", "redirect_slug").Where("retired = ?", true).Find(&rows).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("retirement rules refresh failed: %v", err)
		}
		// Keep serving the previous snapshot but back off for a full interval.
		retirementLoaded = time.Now()
		return
	}

	rules := make(map[string]retirementRule, len(rows))
	for _, w := range rows {
		rules[w.Slug] = retirementRule{RedirectSlug: w.RedirectSlug}
	}
	retirementRules = rules
	retirementLoaded = time.Now()
}

// setRetirementRulesForTest swaps the rule snapshot, bypassing the database.
func setRetirementRulesForTest(rules map[string]retirementRule) {
	retirementMu.Lock()
	retirementRules = rules
	retirementLoaded = time.Now()
	retirementMu.Unlock()
}
