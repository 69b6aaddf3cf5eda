package utils

import (
	"sync"
	"time"
)

var (
	warnLocks = make(map[string]time.Time)
	warnMutex = &sync.Mutex{}
)

const warnLockDuration = 10 * time.Second

// CheckAndSetWarnLock checks if a user is currently under a warn lock,
// which stops two moderators from double-warning the same user at once.
// If not locked, it sets a new lock and returns true.
// If locked, it returns false.
func CheckAndSetWarnLock(guildID, userID string) bool {
	warnMutex.Lock()
	defer warnMutex.Unlock()

	key := guildID + ":" + userID
	if lastWarnTime, ok := warnLocks[key]; ok {
		if time.Since(lastWarnTime) < warnLockDuration {
			return false // Locked
		}
	}

	warnLocks[key] = time.Now()
	return true // Not locked, new lock set
}
