package auth

import (
	"errors"
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("wrong password accepted")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore(time.Hour)
	defer store.Stop()

	id, err := store.Create(42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(id) != 32 {
		t.Fatalf("session id length: got %d, want 32 hex chars", len(id))
	}

	userID, err := store.Lookup(id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if userID != 42 {
		t.Fatalf("lookup user: got %d, want 42", userID)
	}

	store.Destroy(id)
	if _, err := store.Lookup(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("destroyed session still resolves: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewSessionStore(-time.Second)
	defer store.Stop()

	id, err := store.Create(7)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Lookup(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session still resolves: %v", err)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	store := NewSessionStore(time.Hour)
	defer store.Stop()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := store.Create(int64(i))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
