package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SessionCookie is the name of the admin session cookie.
const SessionCookie = "admin_session"

var (
	ErrNoSecret     = errors.New("session secret is not configured")
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("expired session token")
)

// SessionAuthority issues and verifies admin session tokens. A token is
// the expiry timestamp in unix milliseconds, a dot, and the hex HMAC of
// that payload. With an empty secret the authority fails closed: it
// neither issues nor accepts tokens.
type SessionAuthority struct {
	secret   string
	duration time.Duration
}

func NewSessionAuthority(secret string, duration time.Duration) *SessionAuthority {
	return &SessionAuthority{secret: secret, duration: duration}
}

func (a *SessionAuthority) Configured() bool {
	return a.secret != ""
}

func (a *SessionAuthority) Duration() time.Duration {
	return a.duration
}

// Issue creates a token valid for the configured session duration.
func (a *SessionAuthority) Issue(now time.Time) (string, error) {
	if !a.Configured() {
		return "", ErrNoSecret
	}

	payload := strconv.FormatInt(now.Add(a.duration).UnixMilli(), 10)
	return payload + "." + a.sign(payload), nil
}

// Verify checks the signature and expiry of a token.
func (a *SessionAuthority) Verify(token string, now time.Time) error {
	if !a.Configured() {
		return ErrNoSecret
	}

	payload, signature, ok := strings.Cut(token, ".")
	if !ok || payload == "" || signature == "" {
		return ErrInvalidToken
	}

	expiresAt, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if expiresAt <= now.UnixMilli() {
		return ErrExpiredToken
	}

	if !secureCompare(signature, a.sign(payload)) {
		return ErrInvalidToken
	}
	return nil
}

func (a *SessionAuthority) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// secureCompare hashes both sides before the constant-time comparison
// so unequal lengths do not short-circuit.
func secureCompare(left, right string) bool {
	leftHash := sha256.Sum256([]byte(left))
	rightHash := sha256.Sum256([]byte(right))
	return subtle.ConstantTimeCompare(leftHash[:], rightHash[:]) == 1
}
