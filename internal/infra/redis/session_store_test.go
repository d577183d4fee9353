package redis

import (
	"testing"
	"time"

	"iq-quiz-service/internal/app"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	store.Put(app.NewSession("s1", "Alice"))
	if !mr.Exists("iq:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session present locally")
	}

	store.Delete("s1")
	if mr.Exists("iq:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
}
