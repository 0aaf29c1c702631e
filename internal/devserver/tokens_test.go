// ABOUTME: Tests for session token issuing and verification
// ABOUTME: Covers round-trip, wrong secret, expiry, and malformed tokens

package devserver

import (
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	userID, err := issuer.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("different", time.Hour)

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.VerifyToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	if _, err := issuer.VerifyToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}
