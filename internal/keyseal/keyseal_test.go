package keyseal

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func newSealer(t *testing.T, secret string) *Sealer {
	t.Helper()
	s, err := New(secret)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := newSealer(t, "server-secret")

	token, err := s.Seal("AIzaSy-test-key")
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Open(token)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AIzaSy-test-key" {
		t.Fatalf("expected 'AIzaSy-test-key', got %q", got)
	}
}

func TestSealIsDeterministic(t *testing.T) {
	s := newSealer(t, "server-secret")

	a, _ := s.Seal("same")
	b, _ := s.Seal("same")
	if a != b {
		t.Fatal("sealing the same plaintext twice should produce the same token")
	}
	c, _ := s.Seal("other")
	if a == c {
		t.Fatal("different plaintexts should produce different tokens")
	}
}

func TestTokenHidesPlaintext(t *testing.T) {
	s := newSealer(t, "server-secret")
	token, _ := s.Seal("AIzaSy-test-key")
	if strings.Contains(token, "AIzaSy") {
		t.Fatal("token leaks plaintext")
	}
	wire, _ := base64.RawURLEncoding.DecodeString(token)
	if len(wire) != nonceSize+len("AIzaSy-test-key")+tagSize {
		t.Fatalf("unexpected wire length %d", len(wire))
	}
}

func TestOpenRejectsOtherSecret(t *testing.T) {
	token, _ := newSealer(t, "one").Seal("key")
	if _, err := newSealer(t, "two").Open(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestOpenRejectsTampered(t *testing.T) {
	s := newSealer(t, "server-secret")
	token, _ := s.Seal("key")
	wire, _ := base64.RawURLEncoding.DecodeString(token)
	wire[len(wire)-1] ^= 0xff
	if _, err := s.Open(base64.RawURLEncoding.EncodeToString(wire)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	s := newSealer(t, "server-secret")
	for _, token := range []string{"", "!!!", "c2hvcnQ"} {
		if _, err := s.Open(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrNoSecret) {
		t.Fatalf("expected ErrNoSecret, got %v", err)
	}
}

func TestNewRandomSecret(t *testing.T) {
	a, err := NewRandomSecret()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRandomSecret()
	if a == b || a == "" {
		t.Fatal("random secrets should be distinct and non-empty")
	}
}
