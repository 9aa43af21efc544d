package shop

import "sync"

// buyerLocks hands out one mutex per buyer and drops it once no goroutine
// holds or waits for it.
type buyerLocks struct {
	mu    sync.Mutex
	locks map[int64]*buyerLock
}

type buyerLock struct {
	sync.Mutex
	refs int
}

func (b *buyerLocks) lock(buyerID int64) (unlock func()) {
	b.mu.Lock()
	if b.locks == nil {
		b.locks = make(map[int64]*buyerLock)
	}
	l, ok := b.locks[buyerID]
	if !ok {
		l = &buyerLock{}
		b.locks[buyerID] = l
	}
	l.refs++
	b.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		b.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(b.locks, buyerID)
		}
		b.mu.Unlock()
	}
}

func (b *buyerLocks) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.locks)
}
