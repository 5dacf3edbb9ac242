// Package memory implements the session conversation log.
//
// A ConversationMemory is an append-only sequence of turns, oldest first.
// Turns are never edited in place; the only destructive operations are a
// full Clear and the optional capacity window that drops the oldest
// turns once the configured limit is exceeded.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	// SpeakerUser marks a turn typed by the user
	SpeakerUser Speaker = "user"
	// SpeakerAssistant marks a turn produced by an answer strategy
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one utterance in the conversation log. Immutable once created.
type Turn struct {
	ID        string
	Speaker   Speaker
	Text      string
	Timestamp time.Time
}

// NewTurn creates a turn with a fresh ID and timestamp.
func NewTurn(speaker Speaker, text string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// ConversationMemory is an ordered, append-only log of turns.
// The mutex only guards against a UI goroutine reading while a query is
// in flight; within a session writes are serialized by the orchestrator.
type ConversationMemory struct {
	mu       sync.RWMutex
	turns    []Turn
	maxTurns int
}

// Option configures a ConversationMemory.
type Option func(*ConversationMemory)

// WithMaxTurns caps the log at n turns, dropping the oldest beyond the
// window. n <= 0 leaves the log unbounded.
func WithMaxTurns(n int) Option {
	return func(m *ConversationMemory) {
		m.maxTurns = n
	}
}

// NewConversationMemory creates an empty conversation log.
func NewConversationMemory(opts ...Option) *ConversationMemory {
	m := &ConversationMemory{
		turns: make([]Turn, 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Append adds a turn to the end of the log.
func (m *ConversationMemory) Append(turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn)
	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		drop := len(m.turns) - m.maxTurns
		m.turns = append(m.turns[:0:0], m.turns[drop:]...)
	}
}

// Snapshot returns a copy of the log, oldest first. Routing operates on
// snapshots so a decision is reproducible for a given memory state.
func (m *ConversationMemory) Snapshot() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Recent returns a copy of the last n turns, oldest first.
func (m *ConversationMemory) Recent(n int) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || len(m.turns) == 0 {
		return []Turn{}
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]Turn, n)
	copy(out, m.turns[len(m.turns)-n:])
	return out
}

// Len returns the number of turns in the log.
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Clear resets the log to empty.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = make([]Turn, 0)
}
