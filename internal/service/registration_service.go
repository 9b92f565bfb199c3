package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/internal/notify"
	"github.com/covenantconf/registration-api/internal/repo/postgres"
	"github.com/covenantconf/registration-api/pkg/logger"
)

// StatusReport is the gate status plus the live registration count.
type StatusReport struct {
	domain.GateStatus
	CurrentCount int `json:"currentCount"`
}

type RegistrationService interface {
	Submit(ctx context.Context, input *domain.RegistrationInput) (*domain.Registration, string, error)
	Status(ctx context.Context) (*StatusReport, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Registration, error)
	Update(ctx context.Context, id string, input *domain.RegistrationInput) (*domain.Registration, error)
	SetAttendance(ctx context.Context, id string, confirmed bool) (*domain.Registration, error)
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

type registrationService struct {
	registrations postgres.RegistrationRepository
	settings      postgres.SettingsRepository
	notifier      notify.Notifier
	eventName     string
	listTimeout   time.Duration
	now           func() time.Time
}

func NewRegistrationService(
	registrations postgres.RegistrationRepository,
	settings postgres.SettingsRepository,
	notifier notify.Notifier,
	eventName string,
	listTimeout time.Duration,
) RegistrationService {
	return &registrationService{
		registrations: registrations,
		settings:      settings,
		notifier:      notifier,
		eventName:     eventName,
		listTimeout:   listTimeout,
		now:           time.Now,
	}
}

// Submit runs the two-phase admission protocol: validate, gate
// pre-check, duplicate pre-check, gate re-check, then a conditional
// insert. The pre-check avoids a guaranteed-failing write; the
// authoritative guards are the re-check plus the store's capacity
// condition and uniqueness constraint.
func (s *registrationService) Submit(ctx context.Context, input *domain.RegistrationInput) (*domain.Registration, string, error) {
	input.Normalize()
	if fieldErrs := input.Validate(); fieldErrs != nil {
		return nil, "", &domain.ValidationError{Fields: fieldErrs}
	}

	status, count, err := s.evaluateGate(ctx)
	if err != nil {
		return nil, "", err
	}
	if !status.IsOpen {
		return nil, "", &domain.GateRejection{Status: status, CurrentCount: count}
	}

	duplicate, err := s.registrations.ExistsDuplicate(ctx, input.FullName, input.ContactNumber)
	if err != nil {
		return nil, "", fmt.Errorf("duplicate check failed: %w", err)
	}
	if duplicate {
		return nil, "", domain.ErrDuplicate
	}

	// An unbounded interval has passed since the first check: other
	// submissions may have depleted capacity, or an admin may have
	// flipped the switch. Re-evaluate as close to the write as possible.
	status, count, err = s.evaluateGate(ctx)
	if err != nil {
		return nil, "", err
	}
	if !status.IsOpen {
		return nil, "", &domain.GateRejection{Status: status, CurrentCount: count}
	}

	reg, err := s.registrations.Insert(ctx, input.Payload(), status.MaxCapacity)
	if errors.Is(err, domain.ErrCapacityReached) {
		// Lost the remaining race to a concurrent insert. Report it the
		// same way the gate would have.
		rejected, rejectedCount, gateErr := s.evaluateGate(ctx)
		if gateErr != nil {
			return nil, "", gateErr
		}
		return nil, "", &domain.GateRejection{Status: rejected, CurrentCount: rejectedCount}
	}
	if err != nil {
		return nil, "", err
	}

	if s.notifier != nil {
		go func(created domain.Registration) {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			s.notifier.RegistrationCreated(notifyCtx, created)
		}(*reg)
	}

	logger.InfoContext(ctx, "Registration created", "registration_id", reg.ID)

	confirmation := fmt.Sprintf("Dear %s, your registration for %s is confirmed.", reg.FullName, s.eventName)
	return reg, confirmation, nil
}

func (s *registrationService) Status(ctx context.Context) (*StatusReport, error) {
	status, count, err := s.evaluateGate(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusReport{GateStatus: status, CurrentCount: count}, nil
}

func (s *registrationService) evaluateGate(ctx context.Context) (domain.GateStatus, int, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return domain.GateStatus{}, 0, fmt.Errorf("failed to load settings: %w", err)
	}
	count, err := s.registrations.Count(ctx)
	if err != nil {
		return domain.GateStatus{}, 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return domain.EvaluateGate(settings, count, s.now()), count, nil
}

// List applies the bounded wait: when the store does not answer within
// the configured window the wait is abandoned, not the query.
func (s *registrationService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	registrations, err := s.registrations.List(ctx, filter)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, domain.ErrTimeout
	}
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (s *registrationService) Update(ctx context.Context, id string, input *domain.RegistrationInput) (*domain.Registration, error) {
	input.Normalize()
	if fieldErrs := input.Validate(); fieldErrs != nil {
		return nil, &domain.ValidationError{Fields: fieldErrs}
	}

	reg, err := s.registrations.UpdateByID(ctx, id, input.Payload())
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (s *registrationService) SetAttendance(ctx context.Context, id string, confirmed bool) (*domain.Registration, error) {
	reg, err := s.registrations.SetAttendance(ctx, id, confirmed)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

func (s *registrationService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *registrationService) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s.settings.Update(ctx, settings)
}
