package session

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

const (
	sessionNamespace = "agent:session:"

	// DefaultRetention is how long an idle session survives before the
	// sweep removes it or the load path recreates it.
	DefaultRetention = 24 * time.Hour
)

// Store persists sessions in a Cache under a fixed namespace.
type Store struct {
	cache     Cache
	retention time.Duration
	now       func() time.Time
}

func NewStore(cache Cache, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{cache: cache, retention: retention, now: time.Now}
}

func (st *Store) key(id string) string { return sessionNamespace + id }

// Load returns the stored session for id. A record older than the retention
// window is treated as absent (and purged), so the caller starts fresh.
func (st *Store) Load(ctx context.Context, id string) (*Session, bool, error) {
	raw, okHit, err := st.cache.Get(ctx, st.key(id))
	if err != nil {
		return nil, false, fmt.Errorf("load session %s: %w", id, err)
	}
	if !okHit {
		return nil, false, nil
	}
	var s Session
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", id, err)
	}
	if s.Expired(st.retention, st.now().UTC()) {
		_ = st.cache.Del(ctx, st.key(id))
		return nil, false, nil
	}
	return &s, true, nil
}

// Save upserts the session, refreshing its timestamp.
func (st *Store) Save(ctx context.Context, s *Session) error {
	s.LastUpdated = st.now().UTC()
	raw, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := st.cache.Set(ctx, st.key(s.ID), raw); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes the session record.
func (st *Store) Delete(ctx context.Context, id string) error {
	return st.cache.Del(ctx, st.key(id))
}

// Sweep deletes every session older than the retention window and returns
// how many were removed. It runs independently of the request path.
func (st *Store) Sweep(ctx context.Context) (int, error) {
	keys, err := st.cache.Keys(ctx, sessionNamespace)
	if err != nil {
		return 0, fmt.Errorf("sweep: list sessions: %w", err)
	}
	cutoff := st.now().UTC()
	removed := 0
	for _, key := range keys {
		raw, okHit, err := st.cache.Get(ctx, key)
		if err != nil || !okHit {
			continue
		}
		var s Session
		if err := sonic.Unmarshal(raw, &s); err != nil {
			// an undecodable record can only get older; drop it
			if delErr := st.cache.Del(ctx, key); delErr == nil {
				removed++
			}
			continue
		}
		if s.Expired(st.retention, cutoff) {
			if delErr := st.cache.Del(ctx, key); delErr == nil {
				removed++
			}
		}
	}
	return removed, nil
}
