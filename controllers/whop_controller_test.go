package controllers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whpcodes/whpcodes/models"
)

func TestMaskedCodeOmitsCodeString(t *testing.T) {
	masked := maskedCode(models.PromoCode{ID: 7, Code: "SECRET50", Title: "Half off"})

	_, ok := masked["code"]
	assert.False(t, ok)
	assert.Equal(t, "Half off", masked["title"])
}

func TestWhopDetailPayloadHidesCodeStrings(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)
	whop := models.Whop{
		ID:   1,
		Name: "Trading Hub",
		Slug: "trading-hub",
		PromoCodes: []models.PromoCode{
			{
				ID:        7,
				WhopID:    1,
				Code:      "SECRET50",
				Title:     "Half off",
				Status:    models.CodeStatusActive,
				ExpiresAt: &expires,
			},
		},
	}

	// Mirror the detail handler: masked code views next to the listing itself.
	codes := make([]gin.H, 0, len(whop.PromoCodes))
	for _, c := range whop.PromoCodes {
		codes = append(codes, maskedCode(c))
	}
	payload := gin.H{"whop": whop, "codes": codes}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	body := string(b)

	// The code string only ships through the reveal endpoint.
	assert.NotContains(t, body, "SECRET50")
	assert.NotContains(t, body, "promo_codes")

	// Masked metadata is still present.
	assert.Contains(t, body, `"reveal_count"`)
	assert.Contains(t, body, `"title":"Half off"`)
	assert.Contains(t, body, `"slug":"trading-hub"`)
}
