// Package engine implements the expiration alert engine.
package engine

import (
	"context"
	"time"

	"alert-service/internal/database"
	"alert-service/internal/events"
)

// AlertStore defines the storage operations the engine depends on.
// This allows the engine to be tested without a real database.
type AlertStore interface {
	// Internship reads (owned by the main application, never mutated here)
	ListExpiringMandatory(ctx context.Context, notAfter time.Time) ([]*database.Internship, error)
	ListExpiringNonMandatory(ctx context.Context, notAfter time.Time) ([]*database.Internship, error)
	GetInternship(ctx context.Context, internshipID, internshipType string) (*database.Internship, error)

	// Alert operations
	FindPendingAlert(ctx context.Context, internshipID, internshipType, alertType string) (*database.Alert, error)
	InsertAlert(ctx context.Context, params database.NewAlertParams) (*database.Alert, error)
	GetAlert(ctx context.Context, alertID string) (*database.Alert, error)
	MarkAlertSent(ctx context.Context, alertID, link string) error
	MarkAlertRead(ctx context.Context, alertID string) error
	DismissAlert(ctx context.Context, alertID string) error
	ListActiveAlerts(ctx context.Context, userID *string) ([]*database.Alert, error)
	CountActiveAlerts(ctx context.Context) (int, error)
}

// EventPublisher publishes alert created events to a message queue.
type EventPublisher interface {
	// Publish publishes an alert created event.
	Publish(ctx context.Context, created *events.AlertCreated) error

	// Close closes the publisher and releases resources.
	Close() error
}

// MetricsRecorder defines the interface for recording engine metrics.
// This uses the null object pattern - a no-op implementation avoids nil checks.
type MetricsRecorder interface {
	RecordSweepCompleted()
	RecordSweepFailure()
	RecordAlertCreated()
	RecordAlertSkipped()
	RecordLinkGenerated()
	RecordDispatchSkip()
	RecordError()
}

// NoOpMetrics is a no-op implementation of MetricsRecorder.
type NoOpMetrics struct{}

// Ensure NoOpMetrics implements MetricsRecorder.
var _ MetricsRecorder = (*NoOpMetrics)(nil)

func (NoOpMetrics) RecordSweepCompleted() {}
func (NoOpMetrics) RecordSweepFailure()   {}
func (NoOpMetrics) RecordAlertCreated()   {}
func (NoOpMetrics) RecordAlertSkipped()   {}
func (NoOpMetrics) RecordLinkGenerated()  {}
func (NoOpMetrics) RecordDispatchSkip()   {}
func (NoOpMetrics) RecordError()          {}
