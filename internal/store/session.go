package store

import (
	"policyqa/internal/logging"
)

// StoreSessionTurn records one completed conversation turn for post-hoc
// audit. Uses INSERT OR IGNORE so replays are idempotent; the live
// conversation state is in-memory only and never read back from here.
func (s *LocalStore) StoreSessionTurn(sessionID string, turnNumber int, userInput, rewrittenQuery, policyID, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.SessionDebug("Storing session turn: session=%s turn=%d input_len=%d response_len=%d",
		sessionID, turnNumber, len(userInput), len(response))

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO session_history (session_id, turn_number, user_input, rewritten_query, policy_id, response)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, turnNumber, userInput, rewrittenQuery, policyID, response,
	)
	if err != nil {
		logging.Get(logging.CategorySession).Error("Failed to store session turn: session=%s turn=%d: %v", sessionID, turnNumber, err)
		return err
	}
	return nil
}

// SessionTurnCount returns the number of audited turns for a session.
func (s *LocalStore) SessionTurnCount(sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM session_history WHERE session_id = ?", sessionID).Scan(&n)
	return n, err
}
