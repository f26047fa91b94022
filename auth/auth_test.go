package auth

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewTokenService("test-secret", time.Hour)

	token, expiresAt, err := s.Issue("user-1", "dev@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("unexpected expiry window: %v", remaining)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", claims.UserID)
	}
	if claims.Email != "dev@example.com" {
		t.Errorf("expected email carried, got %q", claims.Email)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, _, err := issuer.Issue("user-1", "dev@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification failure for wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	s := NewTokenService("test-secret", -time.Minute)

	token, _, err := s.Issue("user-1", "dev@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Verify(token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := NewTokenService("test-secret", time.Hour)
	if _, err := s.Verify("not.a.token"); err == nil {
		t.Fatal("expected verification failure for malformed token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}

func TestTokenDigestStable(t *testing.T) {
	a := TokenDigest("some.jwt.token")
	b := TokenDigest("some.jwt.token")
	if a != b {
		t.Errorf("digest not stable: %q vs %q", a, b)
	}
	if a == TokenDigest("other.jwt.token") {
		t.Error("distinct tokens share a digest")
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Errorf("expected lowercase hex sha-256 digest, got %q", a)
	}
}
