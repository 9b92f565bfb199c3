package domain

import (
	"errors"
	"time"
)

// Settings is the singleton admission-control record. A nil StartsAt
// means no opening date has been configured; a nil MaxCapacity means
// unlimited seats.
type Settings struct {
	Enabled     bool       `json:"enabled"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	MaxCapacity *int       `json:"maxCapacity"`
}

// DefaultSettings is what the store materializes on first read.
func DefaultSettings() Settings {
	return Settings{Enabled: true}
}

var (
	ErrEndBeforeStart  = errors.New("end date must be after start date")
	ErrInvalidCapacity = errors.New("max capacity must be a positive number")
)

// Validate enforces the window ordering and capacity invariants.
func (s Settings) Validate() error {
	if s.StartsAt != nil && s.EndsAt != nil && !s.EndsAt.After(*s.StartsAt) {
		return ErrEndBeforeStart
	}
	if s.MaxCapacity != nil && *s.MaxCapacity <= 0 {
		return ErrInvalidCapacity
	}
	return nil
}
