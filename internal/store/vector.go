package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"policyqa/internal/logging"
)

// VectorEntry is one row of the persisted embedding index.
type VectorEntry struct {
	ID         int64
	PolicyID   string
	Content    string
	Metadata   map[string]string
	CreatedAt  time.Time
	Similarity float64 // cosine similarity against the search query
}

// StoreVector persists one embedded document.
func (s *LocalStore) StoreVector(policyID, content string, embedding []float32, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	embJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	metaJSON, _ := json.Marshal(metadata)

	_, err = s.db.Exec(
		"INSERT INTO vectors (policy_id, content, embedding, metadata) VALUES (?, ?, ?, ?)",
		policyID, content, string(embJSON), string(metaJSON),
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to store vector for %s: %v", policyID, err)
		return err
	}

	logging.StoreDebug("Stored vector: policy_id=%s dims=%d", policyID, len(embedding))
	return nil
}

// CountVectors returns the number of persisted embeddings. Chat startup
// treats zero as a fatal configuration error.
func (s *LocalStore) CountVectors() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vectors").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// ClearVectors drops all persisted embeddings (re-ingestion).
func (s *LocalStore) ClearVectors() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM vectors"); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}
	return nil
}

// Search returns the top-k entries by cosine similarity against the
// query embedding. This is the semantic-search collaborator the context
// resolver deliberately never calls; it backs the `search` CLI command.
func (s *LocalStore) Search(query []float32, k int) ([]VectorEntry, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Search")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 5
	}

	rows, err := s.db.Query("SELECT id, policy_id, content, embedding, metadata, created_at FROM vectors")
	if err != nil {
		return nil, fmt.Errorf("vector scan failed: %w", err)
	}
	defer rows.Close()

	var results []VectorEntry
	for rows.Next() {
		var entry VectorEntry
		var embJSON, metaJSON string
		if err := rows.Scan(&entry.ID, &entry.PolicyID, &entry.Content, &embJSON, &metaJSON, &entry.CreatedAt); err != nil {
			continue
		}
		var emb []float32
		if err := json.Unmarshal([]byte(embJSON), &emb); err != nil {
			logging.StoreDebug("Skipping vector %d: undecodable embedding", entry.ID)
			continue
		}
		if metaJSON != "" {
			_ = json.Unmarshal([]byte(metaJSON), &entry.Metadata)
		}
		entry.Similarity = CosineSimilarity(query, emb)
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector scan failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}

	logging.StoreDebug("Vector search returned %d results (k=%d)", len(results), k)
	return results, nil
}
