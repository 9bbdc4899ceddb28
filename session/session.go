// Package session holds the conversation session record, its durable keyed
// store, and the expiry sweep.
package session

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/CodingWeeb-Gaurav/backend/fields"
	"github.com/CodingWeeb-Gaurav/backend/types"
)

// Exchange is one (user, agent) turn pair. History is append-only.
type Exchange struct {
	User  string `json:"user"`
	Agent string `json:"agent"`
}

// FinalizeData is the AddressPurpose stage's substructure: the lookup results
// fetched once on stage entry plus the user's selections.
type FinalizeData struct {
	Fetched    bool             `json:"fetched"`
	Industries []types.Industry `json:"industries,omitempty"`
	Addresses  []types.Address  `json:"addresses,omitempty"`

	IndustryID   string         `json:"industry_id,omitempty"`
	IndustryName string         `json:"industry_name,omitempty"`
	Address      *types.Address `json:"address,omitempty"`

	Completed bool `json:"completed"`
}

// Session is the central record, one per end-user conversation. It is mutated
// only by the router and the currently active stage handler.
type Session struct {
	ID       string            `json:"session_id"`
	UserAuth string            `json:"user_auth"`
	Stage    types.Stage       `json:"stage"`
	Request  types.RequestType `json:"request"`

	// Product snapshot captured at confirmation time; immutable once set.
	ProductID   string         `json:"product_id,omitempty"`
	ProductName string         `json:"product_name,omitempty"`
	Product     *types.Product `json:"product,omitempty"`

	// Per-stage substructures, created by stage expansion.
	Details  *fields.Details `json:"details,omitempty"`
	Finalize *FinalizeData   `json:"finalize,omitempty"`

	// Searches caches product lookups for this session only, keyed by the
	// raw query text.
	Searches map[string][]types.Product `json:"searches,omitempty"`

	History     []Exchange `json:"history"`
	LastUpdated time.Time  `json:"last_updated"`
}

// New returns a fresh session in the initial stage.
func New(id, userAuth string) *Session {
	return &Session{
		ID:          id,
		UserAuth:    userAuth,
		Stage:       types.StageProductSelection,
		Request:     types.RequestUnset,
		History:     []Exchange{},
		LastUpdated: time.Now().UTC(),
	}
}

// Expired reports whether the record is older than the retention window.
func (s *Session) Expired(window time.Duration, now time.Time) bool {
	return now.Sub(s.LastUpdated) > window
}

// AppendExchange records a completed turn. Existing entries are never
// rewritten.
func (s *Session) AppendExchange(user, agent string) {
	s.History = append(s.History, Exchange{User: user, Agent: agent})
}

// RecentExchanges returns the last n history entries for prompt replay.
func (s *Session) RecentExchanges(n int) []Exchange {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// Clone deep-copies the session so a failed turn can discard partial writes.
func (s *Session) Clone() (*Session, error) {
	raw, err := sonic.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	var out Session
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	return &out, nil
}

// ExpandForDetails seeds the RequestDetails substructure. The unit is taken
// from the product snapshot when the snapshot carries an allowed one, so the
// stage does not re-ask what the catalog already fixed.
func (s *Session) ExpandForDetails() {
	if s.Details == nil {
		s.Details = &fields.Details{}
	}
	if s.Details.Unit == "" && s.Product != nil {
		switch s.Product.Unit {
		case "KG", "TON":
			s.Details.Unit = s.Product.Unit
		}
	}
}

// ExpandForFinalize seeds the AddressPurpose substructure.
func (s *Session) ExpandForFinalize() {
	if s.Finalize == nil {
		s.Finalize = &FinalizeData{}
	}
}

// CacheSearch stores a lookup result for reuse within this session.
func (s *Session) CacheSearch(query string, products []types.Product) {
	if s.Searches == nil {
		s.Searches = map[string][]types.Product{}
	}
	s.Searches[query] = products
}

// CachedSearch returns a previously stored lookup result.
func (s *Session) CachedSearch(query string) ([]types.Product, bool) {
	p, okHit := s.Searches[query]
	return p, okHit
}
