package service

import (
	"context"
	"sync"
)

// keyLock hands out one mutual-exclusion slot per product ID. Entries are
// dropped once nobody holds or waits on them.
type keyLock struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{slots: make(map[int64]*slot)}
}

// Lock blocks until the slot for key is free or ctx is done. The returned
// func releases the slot and must be called exactly once.
func (k *keyLock) Lock(ctx context.Context, key int64) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			k.release(key, s)
		}, nil
	case <-ctx.Done():
		k.release(key, s)
		return nil, ctx.Err()
	}
}

func (k *keyLock) release(key int64, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
