package state

import "testing"

type draft struct {
	Title string
}

func TestMemoryManagerLifecycle(t *testing.T) {
	m := NewMemoryManager[draft]()

	if m.InProgress(1) {
		t.Fatal("fresh manager must not report progress")
	}
	if st := m.CurrentStep(1); st != StepIdle {
		t.Fatalf("step = %s, expected %s", st, StepIdle)
	}

	m.Set(1, Session[draft]{Step: "title"})
	if !m.InProgress(1) {
		t.Fatal("expected session in progress")
	}
	if m.InProgress(2) {
		t.Fatal("unrelated chat must not share session")
	}

	ok := m.Update(1, func(s *Session[draft]) {
		s.Data.Title = "Fix roof"
		s.Step = "description"
	})
	if !ok {
		t.Fatal("update must find the session")
	}
	s, ok := m.Get(1)
	if !ok || s.Data.Title != "Fix roof" || s.Step != "description" {
		t.Fatalf("unexpected session after update: %+v", s)
	}

	// Re-entry overwrites the previous draft entirely.
	m.Set(1, Session[draft]{Step: "title"})
	s, _ = m.Get(1)
	if s.Data.Title != "" {
		t.Fatalf("overwritten session kept stale draft: %+v", s)
	}

	m.Clear(1)
	if _, ok := m.Get(1); ok {
		t.Fatal("session must be gone after Clear")
	}
}

func TestMemoryManagerUpdateMissing(t *testing.T) {
	m := NewMemoryManager[draft]()
	if m.Update(7, func(s *Session[draft]) { s.Step = "x" }) {
		t.Fatal("update on missing session must report false")
	}
	if _, ok := m.Get(7); ok {
		t.Fatal("update must not create a session")
	}
}
