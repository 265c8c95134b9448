package core

import "testing"

func TestSession_AddMessageAndClone(t *testing.T) {
	s := NewSession("s1")
	s.AddMessage(UserMessage("hi"))

	clone := s.Clone()
	if clone == s {
		t.Error("Clone should be a different pointer")
	}

	clone.AddMessage(AssistantMessage("hello"))
	if len(s.Recent(0)) != 1 {
		t.Error("Original should not have clone's new message")
	}
}

func TestSession_RecentBoundsHistory(t *testing.T) {
	s := NewSession("s2")
	for i := 0; i < MaxHistoryTurns+5; i++ {
		s.AddMessage(UserMessage("m"))
	}
	s.AddMessage(AssistantMessage("last"))

	mem := s.MemoryContext()
	if mem.SessionID != "s2" {
		t.Fatalf("expected session id s2, got %q", mem.SessionID)
	}
	if len(mem.History) != MaxHistoryTurns {
		t.Fatalf("expected %d messages, got %d", MaxHistoryTurns, len(mem.History))
	}
	if mem.History[len(mem.History)-1].Content != "last" {
		t.Error("expected most recent message to be kept")
	}

	recent := s.Recent(2)
	recent[0].Content = "changed"
	if s.Recent(2)[0].Content == "changed" {
		t.Error("history slice should be copied on read")
	}
}
