package payment

import "sync"

// keyedLocks serializes transitions per payment id. Locks are kept for the
// service lifetime; the per-entry cost is one mutex.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (k *keyedLocks) acquire(id string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.m == nil {
		k.m = make(map[string]*sync.Mutex)
	}
	l, ok := k.m[id]
	if !ok {
		l = &sync.Mutex{}
		k.m[id] = l
	}
	return l
}
