package agent

import "sync"

// keyMutex serializes turns per session id. Distinct sessions proceed
// concurrently; two requests for the same id queue instead of racing on the
// store's last-write-wins upsert.
type keyMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{entries: map[string]*lockEntry{}}
}

func (k *keyMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	e, exists := k.entries[key]
	if !exists {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
