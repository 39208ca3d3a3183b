package session

import (
	"fmt"
	"testing"
)

func TestRecordExchange_Ordering(t *testing.T) {
	s := New()
	if s.ID == "" {
		t.Fatal("New() session has empty ID")
	}

	s.RecordExchange("What is the premium for POL001?", "The premium is 500.")
	s.RecordExchange("And the renewal date?", "2026-11-02.")

	if s.TurnCount != 2 {
		t.Fatalf("TurnCount = %d, want 2", s.TurnCount)
	}
	if got := s.History.Len(); got != 2*s.TurnCount {
		t.Fatalf("History.Len() = %d, want %d (two entries per turn)", got, 2*s.TurnCount)
	}

	turns := s.History.Turns()
	wantRoles := []string{RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Fatalf("turns[%d].Role = %q, want %q", i, turns[i].Role, want)
		}
	}
	if turns[0].Content != "What is the premium for POL001?" || turns[1].Content != "The premium is 500." {
		t.Fatalf("first exchange out of order: %q / %q", turns[0].Content, turns[1].Content)
	}
}

func TestHistory_Messages(t *testing.T) {
	var h History
	h.Append(RoleUser, "hi")
	h.Append(RoleAssistant, "Hello! How can I help with your insurance questions?")

	msgs := h.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Messages() len = %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "hi" {
		t.Fatalf("Messages()[0] = %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant {
		t.Fatalf("Messages()[1].Role = %q, want %q", msgs[1].Role, RoleAssistant)
	}
}

func TestHistory_TurnsIsCopy(t *testing.T) {
	var h History
	h.Append(RoleUser, "original")

	turns := h.Turns()
	turns[0].Content = "mutated"

	if got := h.Turns()[0].Content; got != "original" {
		t.Fatalf("History mutated through Turns() copy: %q", got)
	}
}

func TestHistory_GrowsMonotonically(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.RecordExchange(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
		if got, want := s.History.Len(), 2*(i+1); got != want {
			t.Fatalf("after turn %d: History.Len() = %d, want %d", i+1, got, want)
		}
	}
}
