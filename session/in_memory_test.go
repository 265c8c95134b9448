package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/pantrymesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetUnknown(t *testing.T) {
	s := NewInMemoryStore()
	sess, err := s.Get("nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "nobody" || len(sess.History) != 0 {
		t.Fatalf("unexpected session: %#v", sess)
	}
	if len(s.IDs()) != 0 {
		t.Fatalf("Get must not persist sessions, got %v", s.IDs())
	}
}

func TestInMemoryStore_AppendAndIsolation(t *testing.T) {
	s := NewInMemoryStore()
	if err := s.Append("s1", core.UserMessage("hi"), core.AssistantMessage("hello")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	sess, _ := s.Get("s1")
	if len(sess.History) != 2 || sess.History[1].Content != "hello" {
		t.Fatalf("unexpected history: %#v", sess.History)
	}
	// mutation safety (returned session is a clone)
	sess.AddMessage(core.UserMessage("extra"))
	again, _ := s.Get("s1")
	if len(again.History) != 2 {
		t.Fatalf("expected clone isolation, got %d messages", len(again.History))
	}

	s.Delete("s1")
	gone, _ := s.Get("s1")
	if len(gone.History) != 0 {
		t.Fatalf("expected empty session after delete, got %#v", gone.History)
	}
}

func TestInMemoryStore_MaxMessages(t *testing.T) {
	s := NewInMemoryStore(func(o *Options) { o.MaxMessages = 3 })
	for i := 0; i < 5; i++ {
		if err := s.Append("s1", core.UserMessage(fmt.Sprintf("m%d", i))); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	sess, _ := s.Get("s1")
	if len(sess.History) != 3 || sess.History[0].Content != "m2" {
		t.Fatalf("unexpected history: %#v", sess.History)
	}
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	s := NewInMemoryStore(func(o *Options) { o.MaxMessages = 0 })
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append("shared", core.UserMessage("x"))
			_, _ = s.Get("shared")
		}()
	}
	wg.Wait()
	sess, _ := s.Get("shared")
	if len(sess.History) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(sess.History))
	}
}
