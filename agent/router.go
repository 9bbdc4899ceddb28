// Package agent holds the three stage handlers and the router that drives a
// conversation through them: product selection, request details, and address
// and purpose. The router owns dispatch exclusively; handlers never re-check
// their own activation.
package agent

import (
	"context"
	"log/slog"

	"github.com/CodingWeeb-Gaurav/backend/session"
	"github.com/CodingWeeb-Gaurav/backend/types"
)

// apologyReply is the generic failure reply; every internal error resolves to
// it so the boundary never surfaces an error value.
const apologyReply = "I apologize, but I'm having trouble processing your request. Please try again."

// Handler processes one turn for the stage it owns. It returns the reply text
// and the updated session; on failure it must return the session exactly as
// it was before the turn.
type Handler interface {
	Stage() types.Stage
	Handle(ctx context.Context, input string, s *session.Session) (string, *session.Session)
}

// Router loads the session, dispatches to the handler for its stage, applies
// stage expansion when a handover is observed, and persists the result.
type Router struct {
	store    *session.Store
	chatlog  *session.ChatLog
	handlers map[types.Stage]Handler
	locks    *keyMutex
}

// NewRouter wires the handlers into a dispatch table. chatlog may be nil.
func NewRouter(store *session.Store, chatlog *session.ChatLog, handlers ...Handler) *Router {
	table := make(map[types.Stage]Handler, len(handlers))
	for _, h := range handlers {
		table[h.Stage()] = h
	}
	return &Router{
		store:    store,
		chatlog:  chatlog,
		handlers: table,
		locks:    newKeyMutex(),
	}
}

// HandleTurn is the single boundary operation: load or create the session,
// run one turn, persist, reply. It never returns an error; all failure paths
// resolve to user-facing text.
func (r *Router) HandleTurn(ctx context.Context, sessionID, userAuth, userText string) string {
	unlock := r.locks.lock(sessionID)
	defer unlock()

	s, found, err := r.store.Load(ctx, sessionID)
	if err != nil {
		slog.Error("session load failed, starting fresh", "session_id", sessionID, "error", err)
		found = false
	}
	if !found {
		s = session.New(sessionID, userAuth)
	}

	handler, known := r.handlers[s.Stage]
	if !known {
		// fatal to the session, not to the process
		slog.Warn("unknown stage, restarting session", "session_id", sessionID, "stage", s.Stage)
		s = session.New(sessionID, userAuth)
		handler = r.handlers[s.Stage]
	}

	before := s.Stage
	reply, updated := r.dispatch(ctx, handler, userText, s)
	if reply == "" {
		reply = apologyReply
	}
	if updated.Stage != before {
		r.expand(updated)
		slog.Info("stage handover", "session_id", sessionID, "from", before, "to", updated.Stage)
	}
	updated.AppendExchange(userText, reply)

	if err := r.store.Save(ctx, updated); err != nil {
		slog.Error("session save failed", "session_id", sessionID, "error", err)
	}
	if r.chatlog != nil {
		if err := r.chatlog.Append(ctx, sessionID, userText, reply); err != nil {
			slog.Error("chatlog append failed", "session_id", sessionID, "error", err)
		}
	}
	return reply
}

// dispatch runs one handler turn, containing panics so the boundary keeps
// its no-error contract even when an action dereferences something a
// malformed session never had.
func (r *Router) dispatch(ctx context.Context, handler Handler, input string, s *session.Session) (reply string, updated *session.Session) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("handler panicked", "session_id", s.ID, "stage", s.Stage, "panic", rec)
			reply, updated = apologyReply, s
		}
	}()
	return handler.Handle(ctx, input, s)
}

// expand seeds the newly active stage's substructures with empty
// placeholders so re-entry is idempotent.
func (r *Router) expand(s *session.Session) {
	switch s.Stage {
	case types.StageRequestDetails:
		s.ExpandForDetails()
	case types.StageAddressPurpose:
		s.ExpandForFinalize()
	}
}
