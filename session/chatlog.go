package session

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

const chatlogNamespace = "agent:chatlog:"

// ChatEntry is one persisted transcript line.
type ChatEntry struct {
	Role    string    `json:"role"` // "user" or "ai"
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// ChatLog keeps a per-session transcript next to the session record, using
// the same keyed cache.
type ChatLog struct {
	cache Cache
}

func NewChatLog(cache Cache) *ChatLog {
	return &ChatLog{cache: cache}
}

// Append adds the user message and the agent reply to the transcript.
func (l *ChatLog) Append(ctx context.Context, sessionID, userText, reply string) error {
	key := chatlogNamespace + sessionID
	var entries []ChatEntry
	raw, okHit, err := l.cache.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("chatlog load %s: %w", sessionID, err)
	}
	if okHit {
		if err := sonic.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("chatlog decode %s: %w", sessionID, err)
		}
	}
	now := time.Now().UTC()
	entries = append(entries,
		ChatEntry{Role: "user", Message: userText, Time: now},
		ChatEntry{Role: "ai", Message: reply, Time: now},
	)
	out, err := sonic.Marshal(entries)
	if err != nil {
		return fmt.Errorf("chatlog encode %s: %w", sessionID, err)
	}
	return l.cache.Set(ctx, key, out)
}

// Load returns the full transcript for a session.
func (l *ChatLog) Load(ctx context.Context, sessionID string) ([]ChatEntry, error) {
	raw, okHit, err := l.cache.Get(ctx, chatlogNamespace+sessionID)
	if err != nil || !okHit {
		return nil, err
	}
	var entries []ChatEntry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("chatlog decode %s: %w", sessionID, err)
	}
	return entries, nil
}
