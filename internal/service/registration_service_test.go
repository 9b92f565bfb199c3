package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/covenantconf/registration-api/internal/domain"
)

// ---------- Mocks ----------

type mockSettingsRepo struct {
	settings domain.Settings
	getErr   error
}

func (m *mockSettingsRepo) Get(_ context.Context) (domain.Settings, error) {
	if m.getErr != nil {
		return domain.Settings{}, m.getErr
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, s domain.Settings) (domain.Settings, error) {
	m.settings = s
	return s, nil
}

type mockRegistrationRepo struct {
	rows       []domain.Registration
	nextID     int
	insertErr  error
	countCalls int
	listDelay  bool
}

func (m *mockRegistrationRepo) Count(_ context.Context) (int, error) {
	m.countCalls++
	return len(m.rows), nil
}

func (m *mockRegistrationRepo) List(ctx context.Context, _ domain.ListFilter) ([]domain.Registration, error) {
	if m.listDelay {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.rows, nil
}

func (m *mockRegistrationRepo) ExistsDuplicate(_ context.Context, fullName, contactNumber string) (bool, error) {
	for _, row := range m.rows {
		if row.FullName == fullName && row.ContactNumber == contactNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRegistrationRepo) Insert(_ context.Context, payload domain.RegistrationPayload, maxCapacity *int) (*domain.Registration, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if maxCapacity != nil && len(m.rows) >= *maxCapacity {
		return nil, domain.ErrCapacityReached
	}

	m.nextID++
	reg := domain.Registration{
		ID:            fmt.Sprintf("reg-%d", m.nextID),
		FullName:      payload.FullName,
		ContactNumber: payload.ContactNumber,
		Email:         payload.Email,
		Church:        payload.Church,
		Role:          payload.Role,
		HasVehicle:    payload.HasVehicle,
		PlateNumber:   payload.PlateNumber,
		CreatedAt:     time.Now(),
	}
	m.rows = append(m.rows, reg)
	return &reg, nil
}

func (m *mockRegistrationRepo) UpdateByID(_ context.Context, id string, payload domain.RegistrationPayload) (*domain.Registration, error) {
	for i, row := range m.rows {
		if row.ID == id {
			row.FullName = payload.FullName
			row.ContactNumber = payload.ContactNumber
			row.Email = payload.Email
			row.Church = payload.Church
			row.Role = payload.Role
			row.HasVehicle = payload.HasVehicle
			row.PlateNumber = payload.PlateNumber
			m.rows[i] = row
			return &row, nil
		}
	}
	return nil, nil
}

func (m *mockRegistrationRepo) SetAttendance(_ context.Context, id string, confirmed bool) (*domain.Registration, error) {
	for i, row := range m.rows {
		if row.ID == id {
			row.ConfirmedAttendance = confirmed
			m.rows[i] = row
			return &row, nil
		}
	}
	return nil, nil
}

type mockNotifier struct {
	created chan domain.Registration
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{created: make(chan domain.Registration, 8)}
}

func (m *mockNotifier) RegistrationCreated(_ context.Context, reg domain.Registration) {
	m.created <- reg
}

// ---------- Helpers ----------

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(n int) *int              { return &n }

func openSettings() domain.Settings {
	return domain.Settings{
		Enabled:  true,
		StartsAt: timePtr(time.Now().Add(-time.Hour)),
	}
}

func newService(regs *mockRegistrationRepo, settings *mockSettingsRepo, notifier *mockNotifier) RegistrationService {
	if notifier == nil {
		return NewRegistrationService(regs, settings, nil, "OUR COVENANTAL HERITAGE", time.Second)
	}
	return NewRegistrationService(regs, settings, notifier, "OUR COVENANTAL HERITAGE", time.Second)
}

func sampleInput() *domain.RegistrationInput {
	return &domain.RegistrationInput{
		FullName:      "Juan Dela Cruz",
		ContactNumber: "09171234567",
		Email:         "juan@example.com",
		Church:        "Grace Fellowship",
		HasVehicle:    false,
	}
}

// ---------- Tests ----------

func TestSubmitSucceedsAndConfirms(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	notifier := newMockNotifier()
	svc := newService(regs, settings, notifier)

	reg, confirmation, err := svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if reg.FullName != "Juan Dela Cruz" {
		t.Errorf("full name = %q", reg.FullName)
	}
	if !strings.Contains(confirmation, "Juan Dela Cruz") || !strings.Contains(confirmation, "OUR COVENANTAL HERITAGE") {
		t.Errorf("unexpected confirmation: %q", confirmation)
	}

	select {
	case notified := <-notifier.created:
		if notified.ID != reg.ID {
			t.Errorf("notified wrong registration: %s", notified.ID)
		}
	case <-time.After(time.Second):
		t.Error("notifier was never called")
	}
}

func TestSubmitValidationFailsBeforeStoreAccess(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	input := sampleInput()
	input.ContactNumber = "12345"

	_, _, err := svc.Submit(context.Background(), input)

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if regs.countCalls != 0 {
		t.Errorf("store was accessed %d times before validation passed", regs.countCalls)
	}
}

func TestSubmitRejectedWhenGateClosed(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: domain.Settings{Enabled: false}}
	svc := newService(regs, settings, nil)

	_, _, err := svc.Submit(context.Background(), sampleInput())

	var rejection *domain.GateRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected GateRejection, got %v", err)
	}
	if rejection.Status.Reason != domain.GateManualOff {
		t.Errorf("reason = %q, want manual_off", rejection.Status.Reason)
	}
	if len(regs.rows) != 0 {
		t.Error("a row was inserted despite the closed gate")
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	if _, _, err := svc.Submit(context.Background(), sampleInput()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, _, err := svc.Submit(context.Background(), sampleInput())
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(regs.rows) != 1 {
		t.Errorf("row count = %d, want 1", len(regs.rows))
	}
}

func TestSubmitCapacityExhaustedBySecondSubmission(t *testing.T) {
	regs := &mockRegistrationRepo{}
	s := openSettings()
	s.MaxCapacity = intPtr(1)
	settings := &mockSettingsRepo{settings: s}
	svc := newService(regs, settings, nil)

	if _, _, err := svc.Submit(context.Background(), sampleInput()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	second := sampleInput()
	second.FullName = "Maria Clara"
	second.ContactNumber = "09179876543"

	_, _, err := svc.Submit(context.Background(), second)

	var rejection *domain.GateRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected GateRejection, got %v", err)
	}
	if rejection.Status.Reason != domain.GateFull {
		t.Errorf("reason = %q, want full", rejection.Status.Reason)
	}
	if rejection.CurrentCount != 1 {
		t.Errorf("currentCount = %d, want 1", rejection.CurrentCount)
	}
}

// The conditional insert narrows the capacity race to the store's own
// isolation window; under read committed concurrent inserts can still
// overshoot by a row. This covers the case where the store does report
// the cap as reached after the gate said open.
func TestSubmitConditionalInsertLosesRace(t *testing.T) {
	regs := &mockRegistrationRepo{insertErr: domain.ErrCapacityReached}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	_, _, err := svc.Submit(context.Background(), sampleInput())

	var rejection *domain.GateRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected GateRejection when the store refuses the insert, got %v", err)
	}
}

func TestSubmitDiscardsPlateWithoutVehicle(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	input := sampleInput()
	input.HasVehicle = false
	input.PlateNumber = "XYZ-999"

	reg, _, err := svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if reg.PlateNumber != nil {
		t.Errorf("plate number stored as %q, want null", *reg.PlateNumber)
	}
}

func TestStatusReportsCount(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	if _, _, err := svc.Submit(context.Background(), sampleInput()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	report, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !report.IsOpen {
		t.Error("expected open gate")
	}
	if report.CurrentCount != 1 {
		t.Errorf("currentCount = %d, want 1", report.CurrentCount)
	}
}

func TestListTimesOut(t *testing.T) {
	regs := &mockRegistrationRepo{listDelay: true}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := NewRegistrationService(regs, settings, nil, "event", 20*time.Millisecond)

	_, err := svc.List(context.Background(), domain.ListFilter{})
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestUpdateUnknownIDNotFound(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	_, err := svc.Update(context.Background(), "missing", sampleInput())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetAttendanceTogglesFlag(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	reg, _, err := svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	updated, err := svc.SetAttendance(context.Background(), reg.ID, true)
	if err != nil {
		t.Fatalf("set attendance failed: %v", err)
	}
	if !updated.ConfirmedAttendance {
		t.Error("attendance not confirmed")
	}
}

func TestUpdateSettingsRejectsInvertedWindow(t *testing.T) {
	regs := &mockRegistrationRepo{}
	settings := &mockSettingsRepo{settings: openSettings()}
	svc := newService(regs, settings, nil)

	now := time.Now()
	_, err := svc.UpdateSettings(context.Background(), domain.Settings{
		Enabled:  true,
		StartsAt: timePtr(now.Add(time.Hour)),
		EndsAt:   timePtr(now),
	})
	if !errors.Is(err, domain.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
}
