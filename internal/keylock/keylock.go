// Package keylock serializes work per key, for example per user or per book.
package keylock

import "sync"

// Locker hands out one mutex per key. Entries are dropped once no caller holds or waits on them.
// The zero value is ready to use.
type Locker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the function releasing it
func (l *Locker[K]) Lock(key K) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[K]*entry)
	}
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// size reports how many keys are tracked
func (l *Locker[K]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
