package store

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "policyqa.db"))
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreVector_Roundtrip(t *testing.T) {
	s := testStore(t)

	if err := s.StoreVector("POL001", "policy_id: POL001\npremium: 500", []float32{1, 0, 0}, map[string]string{"row": "0"}); err != nil {
		t.Fatalf("StoreVector() error: %v", err)
	}
	if err := s.StoreVector("POL002", "policy_id: POL002\npremium: 300", []float32{0, 1, 0}, map[string]string{"row": "1"}); err != nil {
		t.Fatalf("StoreVector() error: %v", err)
	}

	n, err := s.CountVectors()
	if err != nil {
		t.Fatalf("CountVectors() error: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountVectors() = %d, want 2", n)
	}
}

func TestSearch_OrdersBySimilarity(t *testing.T) {
	s := testStore(t)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("StoreVector() error: %v", err)
		}
	}
	must(s.StoreVector("POL001", "doc one", []float32{1, 0, 0}, nil))
	must(s.StoreVector("POL002", "doc two", []float32{0.9, 0.1, 0}, nil))
	must(s.StoreVector("POL003", "doc three", []float32{0, 0, 1}, nil))

	results, err := s.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].PolicyID != "POL001" || results[1].PolicyID != "POL002" {
		t.Fatalf("Search() order = [%s, %s], want [POL001, POL002]", results[0].PolicyID, results[1].PolicyID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Fatalf("Search() similarities not descending: %f < %f", results[0].Similarity, results[1].Similarity)
	}
}

func TestSearch_DefaultK(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 8; i++ {
		if err := s.StoreVector("POL001", "doc", []float32{1, float32(i), 0}, nil); err != nil {
			t.Fatalf("StoreVector() error: %v", err)
		}
	}

	results, err := s.Search([]float32{1, 0, 0}, 0)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("Search(k=0) returned %d results, want default 5", len(results))
	}
}

func TestClearVectors(t *testing.T) {
	s := testStore(t)

	if err := s.StoreVector("POL001", "doc", []float32{1}, nil); err != nil {
		t.Fatalf("StoreVector() error: %v", err)
	}
	if err := s.ClearVectors(); err != nil {
		t.Fatalf("ClearVectors() error: %v", err)
	}
	n, err := s.CountVectors()
	if err != nil {
		t.Fatalf("CountVectors() error: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountVectors() after clear = %d, want 0", n)
	}
}

func TestStoreSessionTurn_Idempotent(t *testing.T) {
	s := testStore(t)

	if err := s.StoreSessionTurn("sess-1", 1, "what is POL001?", "POL001 premium", "POL001", "The premium is 500."); err != nil {
		t.Fatalf("StoreSessionTurn() error: %v", err)
	}
	// Same (session, turn) again is a no-op, not an error.
	if err := s.StoreSessionTurn("sess-1", 1, "what is POL001?", "POL001 premium", "POL001", "The premium is 500."); err != nil {
		t.Fatalf("StoreSessionTurn() replay error: %v", err)
	}
	if err := s.StoreSessionTurn("sess-1", 2, "and the renewal date?", "POL001 renewal date", "POL001", "2026-11-02."); err != nil {
		t.Fatalf("StoreSessionTurn() error: %v", err)
	}

	n, err := s.SessionTurnCount("sess-1")
	if err != nil {
		t.Fatalf("SessionTurnCount() error: %v", err)
	}
	if n != 2 {
		t.Fatalf("SessionTurnCount() = %d, want 2", n)
	}

	other, err := s.SessionTurnCount("sess-2")
	if err != nil {
		t.Fatalf("SessionTurnCount() error: %v", err)
	}
	if other != 0 {
		t.Fatalf("SessionTurnCount(sess-2) = %d, want 0", other)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
