package auth

import (
	"testing"
	"time"

	"eduplay-service/internal/domain"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher()
	hash, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if err := h.Compare(hash, "correct horse battery"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := h.Compare(hash, "wrong password"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue(42, domain.KindStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, kind, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != 42 || kind != domain.KindStudent {
		t.Fatalf("expected id=42 kind=student, got id=%d kind=%s", id, kind)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue(7, domain.KindTeacher)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)
	token, err := m.Issue(7, domain.KindStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if _, _, err := m.Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
