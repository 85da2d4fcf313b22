package http

import (
	"strings"
	"testing"
	"time"
)

func TestStateSigner(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s, err := newStateSigner("secret", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.now = func() time.Time { return now }

	t.Run("round trip", func(t *testing.T) {
		for _, userID := range []string{"user-1", "a.b@example.com", "ユーザー"} {
			got, err := s.Verify(s.Sign(userID))
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", userID, err)
			}
			if got != userID {
				t.Errorf("expected %q, got %q", userID, got)
			}
		}
	})

	t.Run("nonces differ", func(t *testing.T) {
		if s.Sign("user-1") == s.Sign("user-1") {
			t.Errorf("expected distinct states")
		}
	})

	t.Run("tampered user id", func(t *testing.T) {
		state := s.Sign("user-1")
		other := s.Sign("user-2")
		forged := other[:strings.IndexByte(other, '.')] + state[strings.IndexByte(state, '.'):]
		if _, err := s.Verify(forged); err != errStateSignature {
			t.Errorf("expected signature error, got %v", err)
		}
	})

	t.Run("other key", func(t *testing.T) {
		other, _ := newStateSigner("different", time.Minute)
		other.now = s.now
		if _, err := s.Verify(other.Sign("user-1")); err != errStateSignature {
			t.Errorf("expected signature error, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		state := s.Sign("user-1")
		later := *s
		later.now = func() time.Time { return now.Add(2 * time.Minute) }
		if _, err := later.Verify(state); err != errStateExpired {
			t.Errorf("expected expiry error, got %v", err)
		}
	})

	t.Run("issued in the future", func(t *testing.T) {
		ahead := *s
		ahead.now = func() time.Time { return now.Add(10 * time.Minute) }
		if _, err := s.Verify(ahead.Sign("user-1")); err != errStateFuture {
			t.Errorf("expected future error, got %v", err)
		}
	})

	t.Run("small clock skew is tolerated", func(t *testing.T) {
		ahead := *s
		ahead.now = func() time.Time { return now.Add(30 * time.Second) }
		if got, err := s.Verify(ahead.Sign("user-1")); err != nil || got != "user-1" {
			t.Errorf("expected user-1, got %q, %v", got, err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, state := range []string{"", "nodots", "a.b.c.zz", "x.y"} {
			if _, err := s.Verify(state); err == nil {
				t.Errorf("%q: expected error", state)
			}
		}
	})

	t.Run("random key when unset", func(t *testing.T) {
		a, _ := newStateSigner("", 0)
		b, _ := newStateSigner("", 0)
		if _, err := b.Verify(a.Sign("user-1")); err == nil {
			t.Errorf("expected independent random keys")
		}
		if a.ttl != defaultStateTTL {
			t.Errorf("expected default ttl, got %s", a.ttl)
		}
	})
}
