package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func resetCooldownStore(entries map[string]cooldownEntry) {
	cooldownStoreMu.Lock()
	defer cooldownStoreMu.Unlock()
	cooldownStore = entries
}

func TestCooldownTrySetLocal(t *testing.T) {
	resetCooldownStore(map[string]cooldownEntry{})

	assert.True(t, cooldownTrySetLocal("a@example.com", time.Minute))
	assert.False(t, cooldownTrySetLocal("a@example.com", time.Minute))

	// Independent addresses do not block each other
	assert.True(t, cooldownTrySetLocal("b@example.com", time.Minute))
}

func TestCooldownTrySetLocalExpiredEntryAllowsResend(t *testing.T) {
	resetCooldownStore(map[string]cooldownEntry{
		"a@example.com": {expiresAt: time.Now().Add(-time.Second)},
	})

	assert.True(t, cooldownTrySetLocal("a@example.com", time.Minute))
	assert.False(t, cooldownTrySetLocal("a@example.com", time.Minute))
}

func TestCooldownTrySetLocalSweepsExpiredEntries(t *testing.T) {
	resetCooldownStore(map[string]cooldownEntry{
		"stale1@example.com": {expiresAt: time.Now().Add(-time.Minute)},
		"stale2@example.com": {expiresAt: time.Now().Add(-time.Hour)},
		"live@example.com":   {expiresAt: time.Now().Add(time.Hour)},
	})

	assert.True(t, cooldownTrySetLocal("fresh@example.com", time.Minute))

	cooldownStoreMu.Lock()
	defer cooldownStoreMu.Unlock()
	assert.Len(t, cooldownStore, 2)
	assert.Contains(t, cooldownStore, "fresh@example.com")
	assert.Contains(t, cooldownStore, "live@example.com")
	assert.NotContains(t, cooldownStore, "stale1@example.com")
	assert.NotContains(t, cooldownStore, "stale2@example.com")
}
