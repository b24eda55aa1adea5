package utils

import (
	"time"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
)

// StartCodeExpirySweeper launches a background goroutine that periodically
// marks active promo codes past their expiry as expired and drops stale list
// caches. Best-effort; failures are logged and retried next round.
func StartCodeExpirySweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(config.Get().CodeExpirySweepMinutes) * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			res := db.Model(&models.PromoCode{}).
				Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.CodeStatusActive, time.Now()).
				Update("status", models.CodeStatusExpired)
			if res.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("code expiry sweep failed: %v", res.Error)
				}
				continue
			}
			if res.RowsAffected > 0 {
				if Sugar != nil {
					Sugar.Infof("code expiry sweep marked %d codes expired", res.RowsAffected)
				}
				InvalidateByPrefix("cache:whops:")
				InvalidateByPrefix("cache:whop:detail:")
			}
		}
	}()
}
