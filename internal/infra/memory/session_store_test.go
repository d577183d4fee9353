package memory

import (
	"testing"

	"iq-quiz-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := app.NewSession("s1", "Alice")
	store.Put(session)
	if got, ok := store.Get("s1"); !ok || got != session {
		t.Fatalf("expected session present")
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}
