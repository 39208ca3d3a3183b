// Package chat drives the dialogue loop: rewrite the utterance into a
// standalone query, resolve record context, generate the answer, and
// thread the conversation state. One turn is fully processed before the
// next is read; ordering of the transcript is part of the contract.
package chat

import (
	"context"
	"strings"

	"policyqa/internal/logging"
	"policyqa/internal/perception"
	"policyqa/internal/prompt"
	"policyqa/internal/retrieval"
	"policyqa/internal/session"
	"policyqa/internal/store"
)

// State is the dialogue loop state.
type State int

const (
	StateAwaitingInput State = iota
	StateRewriting
	StateResolving
	StateGenerating
	StateResponding
	StateClosed
)

// Goodbye is printed when the user ends the session.
const Goodbye = "Goodbye!"

// apologyMessage is the fixed reply when an external call fails twice.
// The session stays alive; the failure is not a reason to lose state.
const apologyMessage = "I'm sorry, I ran into a temporary problem answering that. Please try again."

// exitKeywords end the session, matched case-insensitively before any
// external call is made.
var exitKeywords = map[string]struct{}{
	"exit": {},
	"quit": {},
}

// TurnAuditor receives completed turns for post-hoc audit. Optional.
type TurnAuditor interface {
	StoreSessionTurn(sessionID string, turnNumber int, userInput, rewrittenQuery, policyID, response string) error
}

// Engine processes one user turn at a time.
type Engine struct {
	resolver *retrieval.Resolver
	client   perception.LLMClient
	sess     *session.Session
	audit    TurnAuditor
	state    State
}

// NewEngine creates a dialogue engine. audit may be nil.
func NewEngine(resolver *retrieval.Resolver, client perception.LLMClient, sess *session.Session, audit TurnAuditor) *Engine {
	return &Engine{
		resolver: resolver,
		client:   client,
		sess:     sess,
		audit:    audit,
		state:    StateAwaitingInput,
	}
}

// State returns the current loop state.
func (e *Engine) State() State {
	return e.state
}

// Session returns the engine's conversation session.
func (e *Engine) Session() *session.Session {
	return e.sess
}

// HandleInput processes one user turn. It returns the assistant reply
// and whether the session is closed. Exit keywords are checked first
// and short-circuit the turn: no rewrite, no resolve, no generation.
func (e *Engine) HandleInput(ctx context.Context, input string) (string, bool) {
	if _, ok := exitKeywords[strings.ToLower(strings.TrimSpace(input))]; ok {
		e.state = StateClosed
		logging.Chat("Session %s closed by user", e.sess.ID)
		return Goodbye, true
	}

	e.state = StateRewriting
	query := e.rewriteQuery(ctx, input)

	e.state = StateResolving
	records := e.resolver.Resolve(query)

	e.state = StateGenerating
	answer, err := e.generate(ctx, input, records)
	if err != nil {
		logging.Get(logging.CategoryChat).Error("Generation failed after retry: %v", err)
		answer = apologyMessage
	}

	e.state = StateResponding
	e.sess.RecordExchange(input, answer)
	if e.audit != nil {
		policyID := ""
		if len(records) > 0 {
			policyID = records[0].ID
		}
		if err := e.audit.StoreSessionTurn(e.sess.ID, e.sess.TurnCount, input, query, policyID, answer); err != nil {
			logging.Get(logging.CategorySession).Warn("Turn audit failed: %v", err)
		}
	}

	e.state = StateAwaitingInput
	return answer, false
}

// rewriteQuery turns the raw utterance plus the transcript into a
// standalone search query. With an empty history the utterance is used
// verbatim. A rewrite failure (after one retry) falls back to the raw
// utterance rather than losing the turn.
func (e *Engine) rewriteQuery(ctx context.Context, input string) string {
	if e.sess.History.Len() == 0 {
		logging.RewriteDebug("Empty history, using utterance verbatim")
		return input
	}

	messages := append(e.sess.History.Messages(),
		perception.Message{Role: perception.RoleUser, Content: input},
		perception.Message{Role: perception.RoleUser, Content: prompt.RewriteInstruction()},
	)

	rewritten, err := e.chatWithRetry(ctx, "", messages)
	if err != nil {
		logging.Get(logging.CategoryRewrite).Warn("Rewrite failed, falling back to raw utterance: %v", err)
		return input
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return input
	}
	logging.Rewrite("Rewrote %q -> %q", input, rewritten)
	return rewritten
}

// generate produces the grounded answer from the system prompt, the
// transcript, and the current utterance.
func (e *Engine) generate(ctx context.Context, input string, records []store.PolicyRecord) (string, error) {
	system := prompt.SystemPrompt(prompt.FormatContext(records))
	messages := append(e.sess.History.Messages(),
		perception.Message{Role: perception.RoleUser, Content: input},
	)
	return e.chatWithRetry(ctx, system, messages)
}

// chatWithRetry calls the LLM once and retries a single time on
// failure. Transient-failure policy: one retry, then surface.
func (e *Engine) chatWithRetry(ctx context.Context, system string, messages []perception.Message) (string, error) {
	out, err := e.client.ChatWithHistory(ctx, system, messages)
	if err == nil {
		return out, nil
	}
	logging.Get(logging.CategoryChat).Warn("LLM call failed, retrying once: %v", err)
	return e.client.ChatWithHistory(ctx, system, messages)
}
