package domain

import (
	"fmt"
	"time"
)

// GateReason is the closed set of admission decisions.
type GateReason string

const (
	GateManualOff  GateReason = "manual_off"
	GateNotStarted GateReason = "not_started"
	GateEnded      GateReason = "ended"
	GateFull       GateReason = "full"
	GateOpen       GateReason = "open"
)

type GateStatus struct {
	IsOpen      bool       `json:"isOpen"`
	Reason      GateReason `json:"reason"`
	Message     string     `json:"message"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	MaxCapacity *int       `json:"maxCapacity"`
}

// EvaluateGate decides whether a new registration may be accepted right
// now. It is a pure function; callers must re-evaluate on every
// admission decision because count and time move underneath it.
// The check order is part of the contract: manual switch, then the
// schedule window, then capacity.
func EvaluateGate(settings Settings, currentCount int, now time.Time) GateStatus {
	status := GateStatus{
		StartsAt:    settings.StartsAt,
		EndsAt:      settings.EndsAt,
		MaxCapacity: settings.MaxCapacity,
	}

	if !settings.Enabled {
		status.Reason = GateManualOff
		status.Message = "Registration is currently closed."
		return status
	}

	if settings.StartsAt == nil {
		status.Reason = GateNotStarted
		status.Message = "Registration opening date is not set yet."
		return status
	}

	if now.Before(*settings.StartsAt) {
		status.Reason = GateNotStarted
		status.Message = fmt.Sprintf("Registration opens on %s.", settings.StartsAt.Format("Jan 2, 2006 3:04 PM"))
		return status
	}

	if settings.EndsAt != nil && now.After(*settings.EndsAt) {
		status.Reason = GateEnded
		status.Message = "Registration has ended."
		return status
	}

	if settings.MaxCapacity != nil && currentCount >= *settings.MaxCapacity {
		status.Reason = GateFull
		status.Message = "Registration is closed: maximum capacity reached."
		return status
	}

	status.IsOpen = true
	status.Reason = GateOpen
	status.Message = "Registration is open."
	return status
}
