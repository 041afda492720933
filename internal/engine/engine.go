// Package engine implements the expiration alert engine: it detects
// internships approaching their end date, creates deduplicated alert
// records, and generates WhatsApp links for the assigned advisor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"alert-service/internal/database"
	"alert-service/internal/events"
	"alert-service/internal/whatsapp"
)

// ExpirationWindow is how far ahead of an internship's end date an
// alert is raised.
const ExpirationWindow = 30 * 24 * time.Hour

// Recipient kinds accepted by SendForAlert.
const (
	RecipientStudent = "student"
	RecipientAdvisor = "advisor"
	RecipientBoth    = "both"
)

// Engine computes expiring internships and manages alert records.
type Engine struct {
	store     AlertStore
	publisher EventPublisher
	metrics   MetricsRecorder
	now       func() time.Time
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithPublisher sets the event publisher for alert created events.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithMetrics sets a custom metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClock overrides the engine's clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a new alert engine.
func New(store AlertStore, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		metrics: NoOpMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SendResult summarizes a manual per-alert dispatch. Sent lists the
// recipients a link was actually generated for; recipients skipped
// for missing phone numbers are simply absent from it.
type SendResult struct {
	Message string   `json:"message"`
	Sent    []string `json:"sent"`
}

// CheckExpiring runs one full sweep over both internship categories.
// Qualifying records get a new alert unless a pending (undispatched)
// alert already exists for the same internship and alert type.
// Record-level failures are logged and skipped so one bad row never
// blocks the rest of the sweep. A returned error means a whole
// category could not be listed; the other category is still swept.
func (e *Engine) CheckExpiring(ctx context.Context) error {
	now := e.now()
	threshold := now.Add(ExpirationWindow)

	slog.Info("Starting expiration sweep",
		"threshold", threshold.Format(time.RFC3339),
	)

	categories := []struct {
		internshipType string
		list           func(context.Context, time.Time) ([]*database.Internship, error)
	}{
		{database.InternshipTypeMandatory, e.store.ListExpiringMandatory},
		{database.InternshipTypeNonMandatory, e.store.ListExpiringNonMandatory},
	}

	var errs []error
	for _, cat := range categories {
		records, err := cat.list(ctx, threshold)
		if err != nil {
			slog.Error("Failed to list expiring internships",
				"internship_type", cat.internshipType,
				"error", err,
			)
			e.metrics.RecordError()
			errs = append(errs, fmt.Errorf("list %s internships: %w", cat.internshipType, err))
			continue
		}

		slog.Info("Found expiring internships",
			"internship_type", cat.internshipType,
			"count", len(records),
		)

		for _, record := range records {
			e.processRecord(ctx, record, now)
		}
	}

	if len(errs) > 0 {
		e.metrics.RecordSweepFailure()
		return errors.Join(errs...)
	}

	e.metrics.RecordSweepCompleted()
	return nil
}

// processRecord creates and dispatches an alert for one expiring
// internship, unless a pending duplicate exists. All failures here are
// record-level: logged, counted, and swallowed.
func (e *Engine) processRecord(ctx context.Context, record *database.Internship, now time.Time) {
	existing, err := e.store.FindPendingAlert(ctx, record.InternshipID, record.InternshipType, database.AlertTypeExpirationWarning)
	if err != nil {
		slog.Error("Failed to check for pending alert",
			"internship_id", record.InternshipID,
			"internship_type", record.InternshipType,
			"error", err,
		)
		e.metrics.RecordError()
		return
	}
	if existing != nil {
		// Expected steady state between sweeps, not an error.
		slog.Debug("Pending alert already exists, skipping",
			"internship_id", record.InternshipID,
			"internship_type", record.InternshipType,
			"alert_id", existing.AlertID,
		)
		e.metrics.RecordAlertSkipped()
		return
	}

	days := daysUntilExpiration(record.EndDate, now)
	title, message := renderExpirationAlert(record, days)

	alert, err := e.store.InsertAlert(ctx, database.NewAlertParams{
		InternshipID:        record.InternshipID,
		InternshipType:      record.InternshipType,
		AlertType:           database.AlertTypeExpirationWarning,
		Title:               title,
		Message:             message,
		DaysUntilExpiration: days,
		// The assigned advisor is the sole default recipient; students
		// are only reached through the manual per-alert dispatch.
		TargetUsers: []string{record.AdvisorID},
	})
	if err != nil {
		slog.Error("Failed to insert alert",
			"internship_id", record.InternshipID,
			"internship_type", record.InternshipType,
			"error", err,
		)
		e.metrics.RecordError()
		return
	}

	e.metrics.RecordAlertCreated()
	slog.Info("Created expiration alert",
		"alert_id", alert.AlertID,
		"internship_id", record.InternshipID,
		"internship_type", record.InternshipType,
		"days_until_expiration", days,
	)

	e.publishAlertCreated(ctx, alert)

	if _, err := e.dispatch(ctx, alert, record.AdvisorPhone, "advisor", record.AdvisorName); err != nil {
		slog.Error("Failed to dispatch alert",
			"alert_id", alert.AlertID,
			"error", err,
		)
		e.metrics.RecordError()
	}
}

// dispatch generates a WhatsApp link for the recipient and marks the
// alert sent. A missing phone number is not an error: the alert stays
// pending and the skip is logged. Returns the generated link, or ""
// when the recipient was skipped.
func (e *Engine) dispatch(ctx context.Context, alert *database.Alert, rawPhone, recipientKind, recipientName string) (string, error) {
	if strings.TrimSpace(rawPhone) == "" {
		slog.Info("Recipient has no phone number, skipping dispatch",
			"alert_id", alert.AlertID,
			"recipient_kind", recipientKind,
			"recipient_name", recipientName,
		)
		e.metrics.RecordDispatchSkip()
		return "", nil
	}

	link, err := whatsapp.BuildLink(rawPhone, alert.Title, alert.Message)
	if err != nil {
		return "", fmt.Errorf("failed to build WhatsApp link: %w", err)
	}

	if err := e.store.MarkAlertSent(ctx, alert.AlertID, link); err != nil {
		return "", fmt.Errorf("failed to mark alert sent: %w", err)
	}

	e.metrics.RecordLinkGenerated()
	slog.Info("Generated WhatsApp link",
		"alert_id", alert.AlertID,
		"recipient_kind", recipientKind,
		"recipient_name", recipientName,
	)
	return link, nil
}

// SendForAlert generates WhatsApp links for an existing alert on
// demand. recipientKind selects the student, the advisor, or both.
// Failures resolving the alert or its internship are hard errors;
// per-recipient failures only shorten the returned Sent list.
func (e *Engine) SendForAlert(ctx context.Context, alertID, recipientKind string) (*SendResult, error) {
	if recipientKind != RecipientStudent && recipientKind != RecipientAdvisor && recipientKind != RecipientBoth {
		return nil, fmt.Errorf("invalid recipient kind: %s", recipientKind)
	}

	alert, err := e.store.GetAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	internship, err := e.store.GetInternship(ctx, alert.InternshipID, alert.InternshipType)
	if err != nil {
		return nil, err
	}

	type recipient struct {
		kind  string
		name  string
		phone string
		label string
	}
	var recipients []recipient
	if recipientKind == RecipientStudent || recipientKind == RecipientBoth {
		recipients = append(recipients, recipient{
			kind:  RecipientStudent,
			name:  internship.StudentName,
			phone: internship.StudentPhone,
			label: "aluno(a) " + internship.StudentName,
		})
	}
	if recipientKind == RecipientAdvisor || recipientKind == RecipientBoth {
		recipients = append(recipients, recipient{
			kind:  RecipientAdvisor,
			name:  internship.AdvisorName,
			phone: internship.AdvisorPhone,
			label: "orientador(a) " + internship.AdvisorName,
		})
	}

	sent := []string{}
	for _, r := range recipients {
		link, err := e.dispatch(ctx, alert, r.phone, r.kind, r.name)
		if err != nil {
			slog.Error("Failed to generate link for recipient",
				"alert_id", alertID,
				"recipient_kind", r.kind,
				"error", err,
			)
			e.metrics.RecordError()
			continue
		}
		if link != "" {
			sent = append(sent, r.label)
		}
	}

	message := fmt.Sprintf("Link do WhatsApp gerado para %d destinatário(s)", len(sent))
	if len(sent) == 0 {
		message = "Nenhum link gerado: destinatário(s) sem telefone cadastrado"
	}

	return &SendResult{Message: message, Sent: sent}, nil
}

// GetActiveAlerts returns live alerts, optionally filtered to those
// targeting the given user.
func (e *Engine) GetActiveAlerts(ctx context.Context, userID *string) ([]*database.Alert, error) {
	return e.store.ListActiveAlerts(ctx, userID)
}

// CountActiveAlerts returns the number of live alerts.
func (e *Engine) CountActiveAlerts(ctx context.Context) (int, error) {
	return e.store.CountActiveAlerts(ctx)
}

// MarkAlertAsRead stamps the alert's read timestamp. Safe to call more
// than once.
func (e *Engine) MarkAlertAsRead(ctx context.Context, alertID, userID string) error {
	if err := e.store.MarkAlertRead(ctx, alertID); err != nil {
		return err
	}
	slog.Info("Alert marked as read", "alert_id", alertID, "user_id", userID)
	return nil
}

// DismissAlert stamps the alert's dismissal timestamp and deactivates
// it. Safe to call more than once.
func (e *Engine) DismissAlert(ctx context.Context, alertID, userID string) error {
	if err := e.store.DismissAlert(ctx, alertID); err != nil {
		return err
	}
	slog.Info("Alert dismissed", "alert_id", alertID, "user_id", userID)
	return nil
}

// publishAlertCreated emits an alerts.created event. Publish failures
// are logged but never fail the sweep.
func (e *Engine) publishAlertCreated(ctx context.Context, alert *database.Alert) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, events.NewAlertCreated(alert)); err != nil {
		slog.Error("Failed to publish alert created event",
			"alert_id", alert.AlertID,
			"error", err,
		)
		e.metrics.RecordError()
	}
}

// daysUntilExpiration computes the whole days remaining until end,
// rounded up. An internship ending in 10 days and 3 hours reports 11.
func daysUntilExpiration(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

// renderExpirationAlert builds the human-readable alert title and message.
func renderExpirationAlert(record *database.Internship, days int) (title, message string) {
	typeLabel := "obrigatório"
	if record.InternshipType == database.InternshipTypeNonMandatory {
		typeLabel = "não obrigatório"
	}

	title = "Alerta de Vencimento de Estágio"
	message = fmt.Sprintf(
		"O estágio %s de %s (matrícula %s) vence em %s. Restam %d dia(s).",
		typeLabel,
		record.StudentName,
		record.RegistrationNumber,
		record.EndDate.Format("02/01/2006"),
		days,
	)
	return title, message
}
