package auth

import (
	"testing"

	"github.com/alexedwards/argon2id"
)

func TestCredentialsVerify(t *testing.T) {
	hash, err := argon2id.CreateHash("correct-horse", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	creds := NewCredentials("admin@example.com", hash)

	if !creds.Verify("admin@example.com", "correct-horse") {
		t.Error("valid credentials rejected")
	}
	if !creds.Verify("ADMIN@EXAMPLE.COM", "correct-horse") {
		t.Error("email comparison should be case-insensitive")
	}
	if creds.Verify("admin@example.com", "wrong") {
		t.Error("wrong password accepted")
	}
	if creds.Verify("other@example.com", "correct-horse") {
		t.Error("wrong email accepted")
	}
}

func TestCredentialsFailClosedWhenUnconfigured(t *testing.T) {
	creds := NewCredentials("", "")
	if creds.Verify("admin@example.com", "anything") {
		t.Error("unconfigured credentials accepted a login")
	}
}
