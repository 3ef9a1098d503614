package services

import "sync"

// BookLocks serializes work per book ID and forgets keys nobody holds.
// The orchestrator and the reconciler must share one instance so a repair
// never observes a loan change half done.
type BookLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	holders int
}

func NewBookLocks() *BookLocks {
	return &BookLocks{locks: make(map[string]*refLock)}
}

// lock blocks until key is free and returns the matching unlock.
func (k *BookLocks) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.holders++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.holders--
		if l.holders == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
