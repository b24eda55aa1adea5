package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/whpcodes/whpcodes/models"
)

func TestCodeRevealable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, codeRevealable(models.PromoCode{Status: models.CodeStatusActive}, now))
	assert.True(t, codeRevealable(models.PromoCode{Status: models.CodeStatusActive, ExpiresAt: &future}, now))

	// Past expiry blocks the reveal even while the sweeper still has the row
	// marked active.
	assert.False(t, codeRevealable(models.PromoCode{Status: models.CodeStatusActive, ExpiresAt: &past}, now))

	assert.False(t, codeRevealable(models.PromoCode{Status: models.CodeStatusExpired}, now))
	assert.False(t, codeRevealable(models.PromoCode{Status: models.CodeStatusDisabled, ExpiresAt: &future}, now))
}
