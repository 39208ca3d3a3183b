// Package session holds the in-process conversation state. The
// transcript is append-only for the lifetime of one run and never
// persisted back into live state; ordering is a correctness contract
// for the dialogue loop.
package session

import (
	"time"

	"github.com/google/uuid"

	"policyqa/internal/logging"
	"policyqa/internal/perception"
)

// Turn roles.
const (
	RoleUser      = perception.RoleUser
	RoleAssistant = perception.RoleAssistant
)

// Turn is one conversation entry.
type Turn struct {
	Role    string
	Content string
	At      time.Time
}

// History is the ordered, append-only transcript of a session.
type History struct {
	turns []Turn
}

// Append adds a turn to the transcript.
func (h *History) Append(role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content, At: time.Now()})
}

// Len returns the number of turns recorded.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the transcript in chronological order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Messages renders the transcript as LLM messages, preserving order.
func (h *History) Messages() []perception.Message {
	out := make([]perception.Message, 0, len(h.turns))
	for _, t := range h.turns {
		out = append(out, perception.Message{Role: t.Role, Content: t.Content})
	}
	return out
}

// Session is one conversation: a fresh ID, an empty history, and a turn
// counter for the audit trail.
type Session struct {
	ID        string
	History   History
	TurnCount int
}

// New creates a session with a fresh identifier.
func New() *Session {
	s := &Session{ID: uuid.NewString()}
	logging.Session("New session started: %s", s.ID)
	return s
}

// RecordExchange appends the user utterance and the assistant answer,
// in that order, and advances the turn counter.
func (s *Session) RecordExchange(userInput, answer string) {
	s.History.Append(RoleUser, userInput)
	s.History.Append(RoleAssistant, answer)
	s.TurnCount++
	logging.SessionDebug("Session %s: turn %d recorded (history=%d entries)", s.ID, s.TurnCount, s.History.Len())
}
