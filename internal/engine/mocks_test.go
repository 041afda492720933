// Package engine provides test doubles for engine dependencies.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alert-service/internal/database"
	"alert-service/internal/events"
)

// fakeStore is an in-memory AlertStore honoring the storage contract:
// inclusive expiration bounds, pending-alert dedup, and alert
// lifecycle updates. Used for sweep-level behavior tests.
type fakeStore struct {
	mu           sync.Mutex
	now          func() time.Time
	mandatory    []*database.Internship
	nonMandatory []*database.Internship
	alerts       []*database.Alert
	nextID       int
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{now: now}
}

func (s *fakeStore) ListExpiringMandatory(_ context.Context, notAfter time.Time) ([]*database.Internship, error) {
	return s.filterExpiring(s.mandatory, notAfter), nil
}

func (s *fakeStore) ListExpiringNonMandatory(_ context.Context, notAfter time.Time) ([]*database.Internship, error) {
	return s.filterExpiring(s.nonMandatory, notAfter), nil
}

func (s *fakeStore) filterExpiring(records []*database.Internship, notAfter time.Time) []*database.Internship {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var result []*database.Internship
	for _, r := range records {
		// Both bounds inclusive
		if r.EndDate.Before(now) || r.EndDate.After(notAfter) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func (s *fakeStore) GetInternship(_ context.Context, internshipID, internshipType string) (*database.Internship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []*database.Internship
	switch internshipType {
	case database.InternshipTypeMandatory:
		records = s.mandatory
	case database.InternshipTypeNonMandatory:
		records = s.nonMandatory
	}
	for _, r := range records {
		if r.InternshipID == internshipID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("internship not found: %s (%s)", internshipID, internshipType)
}

func (s *fakeStore) FindPendingAlert(_ context.Context, internshipID, internshipType, alertType string) (*database.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.InternshipID == internshipID && a.InternshipType == internshipType && a.AlertType == alertType && a.SentAt == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertAlert(_ context.Context, params database.NewAlertParams) (*database.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := s.now()
	alert := &database.Alert{
		AlertID:             fmt.Sprintf("alert-%d", s.nextID),
		InternshipID:        params.InternshipID,
		InternshipType:      params.InternshipType,
		AlertType:           params.AlertType,
		Title:               params.Title,
		Message:             params.Message,
		DaysUntilExpiration: params.DaysUntilExpiration,
		TargetUsers:         params.TargetUsers,
		Status:              database.AlertStatusPending,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.alerts = append(s.alerts, alert)
	return alert, nil
}

func (s *fakeStore) GetAlert(_ context.Context, alertID string) (*database.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.AlertID == alertID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("alert not found: %s", alertID)
}

func (s *fakeStore) MarkAlertSent(_ context.Context, alertID, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.AlertID == alertID {
			now := s.now()
			a.WhatsAppLink = link
			a.SentAt = &now
			a.Status = database.AlertStatusSent
			return nil
		}
	}
	return fmt.Errorf("alert not found: %s", alertID)
}

func (s *fakeStore) MarkAlertRead(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.AlertID == alertID {
			now := s.now()
			a.ReadAt = &now
			return nil
		}
	}
	return fmt.Errorf("alert not found: %s", alertID)
}

func (s *fakeStore) DismissAlert(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.AlertID == alertID {
			now := s.now()
			a.DismissedAt = &now
			a.IsActive = false
			return nil
		}
	}
	return fmt.Errorf("alert not found: %s", alertID)
}

func (s *fakeStore) ListActiveAlerts(_ context.Context, userID *string) ([]*database.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*database.Alert
	for _, a := range s.alerts {
		if !a.IsActive || a.DismissedAt != nil {
			continue
		}
		if userID != nil && !containsUser(a.TargetUsers, *userID) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (s *fakeStore) CountActiveAlerts(ctx context.Context) (int, error) {
	alerts, err := s.ListActiveAlerts(ctx, nil)
	if err != nil {
		return 0, err
	}
	return len(alerts), nil
}

func containsUser(users []string, userID string) bool {
	for _, u := range users {
		if u == userID {
			return true
		}
	}
	return false
}

// mockStore implements AlertStore with per-method callbacks for
// targeted failure injection.
type mockStore struct {
	ListExpiringMandatoryFn    func(ctx context.Context, notAfter time.Time) ([]*database.Internship, error)
	ListExpiringNonMandatoryFn func(ctx context.Context, notAfter time.Time) ([]*database.Internship, error)
	GetInternshipFn            func(ctx context.Context, internshipID, internshipType string) (*database.Internship, error)
	FindPendingAlertFn         func(ctx context.Context, internshipID, internshipType, alertType string) (*database.Alert, error)
	InsertAlertFn              func(ctx context.Context, params database.NewAlertParams) (*database.Alert, error)
	GetAlertFn                 func(ctx context.Context, alertID string) (*database.Alert, error)
	MarkAlertSentFn            func(ctx context.Context, alertID, link string) error
	MarkAlertReadFn            func(ctx context.Context, alertID string) error
	DismissAlertFn             func(ctx context.Context, alertID string) error
	ListActiveAlertsFn         func(ctx context.Context, userID *string) ([]*database.Alert, error)
	CountActiveAlertsFn        func(ctx context.Context) (int, error)
}

func (m *mockStore) ListExpiringMandatory(ctx context.Context, notAfter time.Time) ([]*database.Internship, error) {
	if m.ListExpiringMandatoryFn != nil {
		return m.ListExpiringMandatoryFn(ctx, notAfter)
	}
	return nil, nil
}

func (m *mockStore) ListExpiringNonMandatory(ctx context.Context, notAfter time.Time) ([]*database.Internship, error) {
	if m.ListExpiringNonMandatoryFn != nil {
		return m.ListExpiringNonMandatoryFn(ctx, notAfter)
	}
	return nil, nil
}

func (m *mockStore) GetInternship(ctx context.Context, internshipID, internshipType string) (*database.Internship, error) {
	if m.GetInternshipFn != nil {
		return m.GetInternshipFn(ctx, internshipID, internshipType)
	}
	return nil, fmt.Errorf("internship not found: %s (%s)", internshipID, internshipType)
}

func (m *mockStore) FindPendingAlert(ctx context.Context, internshipID, internshipType, alertType string) (*database.Alert, error) {
	if m.FindPendingAlertFn != nil {
		return m.FindPendingAlertFn(ctx, internshipID, internshipType, alertType)
	}
	return nil, nil
}

func (m *mockStore) InsertAlert(ctx context.Context, params database.NewAlertParams) (*database.Alert, error) {
	if m.InsertAlertFn != nil {
		return m.InsertAlertFn(ctx, params)
	}
	return &database.Alert{AlertID: "alert-1", Status: database.AlertStatusPending, IsActive: true}, nil
}

func (m *mockStore) GetAlert(ctx context.Context, alertID string) (*database.Alert, error) {
	if m.GetAlertFn != nil {
		return m.GetAlertFn(ctx, alertID)
	}
	return nil, fmt.Errorf("alert not found: %s", alertID)
}

func (m *mockStore) MarkAlertSent(ctx context.Context, alertID, link string) error {
	if m.MarkAlertSentFn != nil {
		return m.MarkAlertSentFn(ctx, alertID, link)
	}
	return nil
}

func (m *mockStore) MarkAlertRead(ctx context.Context, alertID string) error {
	if m.MarkAlertReadFn != nil {
		return m.MarkAlertReadFn(ctx, alertID)
	}
	return nil
}

func (m *mockStore) DismissAlert(ctx context.Context, alertID string) error {
	if m.DismissAlertFn != nil {
		return m.DismissAlertFn(ctx, alertID)
	}
	return nil
}

func (m *mockStore) ListActiveAlerts(ctx context.Context, userID *string) ([]*database.Alert, error) {
	if m.ListActiveAlertsFn != nil {
		return m.ListActiveAlertsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) CountActiveAlerts(ctx context.Context) (int, error) {
	if m.CountActiveAlertsFn != nil {
		return m.CountActiveAlertsFn(ctx)
	}
	return 0, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	mu        sync.Mutex
	published []*events.AlertCreated
	publishFn func(ctx context.Context, created *events.AlertCreated) error
}

func (m *mockPublisher) Publish(ctx context.Context, created *events.AlertCreated) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, created)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, created)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}
