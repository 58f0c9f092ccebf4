// internal/services/lock_manager.go
package services

import (
	"sync"
	"time"
)

// LockManager hands out one mutex per project id
type LockManager struct {
	locks      map[string]*lockInfo
	globalLock sync.Mutex
	lockTTL    time.Duration
	maxLocks   int
}

type lockInfo struct {
	mutex    sync.Mutex
	lastUsed time.Time
	refs     int // holders and waiters; never evicted while > 0
}

// NewLockManager 创建锁管理器
func NewLockManager() *LockManager {
	return &LockManager{
		locks:    make(map[string]*lockInfo),
		lockTTL:  30 * time.Minute,
		maxLocks: 200,
	}
}

// ExecuteWithProjectLock runs fn while holding the lock for projectID
func (lm *LockManager) ExecuteWithProjectLock(projectID string, fn func() error) error {
	info := lm.acquire(projectID)
	info.mutex.Lock()
	defer lm.release(projectID, info)
	defer info.mutex.Unlock()

	return fn()
}

func (lm *LockManager) acquire(projectID string) *lockInfo {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	info, exists := lm.locks[projectID]
	if !exists {
		info = &lockInfo{}
		lm.locks[projectID] = info
	}
	info.refs++
	info.lastUsed = time.Now()
	return info
}

func (lm *LockManager) release(projectID string, info *lockInfo) {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	info.refs--
	info.lastUsed = time.Now()
	if len(lm.locks) > lm.maxLocks {
		lm.cleanupLocked()
	}
}

// 只清理长时间未使用且无人持有的锁
func (lm *LockManager) cleanupLocked() {
	now := time.Now()
	for id, info := range lm.locks {
		if info.refs == 0 && now.Sub(info.lastUsed) > lm.lockTTL {
			delete(lm.locks, id)
		}
	}
}

// size is the number of tracked locks
func (lm *LockManager) size() int {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()
	return len(lm.locks)
}
