package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
)

// Credentials verifies the single admin account configured through the
// environment. The password is stored as an argon2id hash.
type Credentials struct {
	email        string
	passwordHash string
}

func NewCredentials(email, passwordHash string) *Credentials {
	return &Credentials{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
	}
}

func (c *Credentials) Configured() bool {
	return c.email != "" && c.passwordHash != ""
}

func (c *Credentials) Verify(email, password string) bool {
	if !c.Configured() {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(email), c.email) {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, c.passwordHash)
	if err != nil {
		return false
	}
	return match
}
