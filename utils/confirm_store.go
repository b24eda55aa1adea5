package utils

import (
	"context"
	"sync"
	"time"
)

// in-memory fallback store
type cooldownEntry struct {
	expiresAt time.Time
}

var (
	cooldownStore   = map[string]cooldownEntry{}
	cooldownStoreMu sync.Mutex
)

// EmailCooldownTrySet sets a cooldown key for sending mail to an address.
// Returns true if the send is allowed, false while cooling down. Prevents a
// subscribe form from being used to flood a mailbox with confirmation mail.
func EmailCooldownTrySet(email string, cooldown time.Duration) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := "cooldown:email:" + email
		ok, err := rc.SetNX(ctx, key, "1", cooldown).Result()
		if err == nil {
			return ok
		}
	}
	return cooldownTrySetLocal(email, cooldown)
}

// cooldownTrySetLocal is the fallback used when Redis is unreachable. Expired
// entries are swept on each insert so the map stays bounded by the number of
// addresses currently cooling down.
func cooldownTrySetLocal(email string, cooldown time.Duration) bool {
	cooldownStoreMu.Lock()
	defer cooldownStoreMu.Unlock()

	now := time.Now()
	for k, entry := range cooldownStore {
		if now.After(entry.expiresAt) {
			delete(cooldownStore, k)
		}
	}

	if entry, ok := cooldownStore[email]; ok && now.Before(entry.expiresAt) {
		return false
	}
	cooldownStore[email] = cooldownEntry{expiresAt: now.Add(cooldown)}
	return true
}
