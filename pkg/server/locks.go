package server

import "sync"

// nameLocks serializes writers per layout name so a load, edit and save of
// one layout never interleaves with another write to the same name. It only
// covers this process; separate processes sharing a store are not
// coordinated.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	sync.Mutex
	waiters int
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*nameLock)}
}

// lock blocks until name is free and returns the matching unlock. Entries are
// dropped once nobody holds or waits for them.
func (n *nameLocks) lock(name string) (unlock func()) {
	n.mu.Lock()
	l, ok := n.locks[name]
	if !ok {
		l = &nameLock{}
		n.locks[name] = l
	}
	l.waiters++
	n.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		n.mu.Lock()
		if l.waiters--; l.waiters == 0 {
			delete(n.locks, name)
		}
		n.mu.Unlock()
	}
}

func (n *nameLocks) len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.locks)
}
