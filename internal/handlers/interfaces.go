// Package handlers provides HTTP handlers for the alert-service API.
package handlers

import (
	"context"

	"alert-service/internal/database"
	"alert-service/internal/engine"
	"alert-service/internal/metrics"
	"alert-service/internal/scheduler"
)

// AlertService is the subset of the alert engine the handlers use.
type AlertService interface {
	GetActiveAlerts(ctx context.Context, userID *string) ([]*database.Alert, error)
	SendForAlert(ctx context.Context, alertID, recipientKind string) (*engine.SendResult, error)
	MarkAlertAsRead(ctx context.Context, alertID, userID string) error
	DismissAlert(ctx context.Context, alertID, userID string) error
}

// SweepService triggers on-demand expiration sweeps.
type SweepService interface {
	RunManualCheck(ctx context.Context) (*scheduler.ManualCheckResult, error)
}

// MetricsSource exposes the service's counter snapshot.
type MetricsSource interface {
	GetSnapshot() *metrics.Snapshot
}
