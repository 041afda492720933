// Package handlers provides test doubles for handler dependencies.
package handlers

import (
	"context"
	"fmt"

	"alert-service/internal/database"
	"alert-service/internal/engine"
	"alert-service/internal/metrics"
	"alert-service/internal/scheduler"
)

// mockAlertService implements AlertService with per-method callbacks.
type mockAlertService struct {
	GetActiveAlertsFn func(ctx context.Context, userID *string) ([]*database.Alert, error)
	SendForAlertFn    func(ctx context.Context, alertID, recipientKind string) (*engine.SendResult, error)
	MarkAlertAsReadFn func(ctx context.Context, alertID, userID string) error
	DismissAlertFn    func(ctx context.Context, alertID, userID string) error
}

func (m *mockAlertService) GetActiveAlerts(ctx context.Context, userID *string) ([]*database.Alert, error) {
	if m.GetActiveAlertsFn != nil {
		return m.GetActiveAlertsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAlertService) SendForAlert(ctx context.Context, alertID, recipientKind string) (*engine.SendResult, error) {
	if m.SendForAlertFn != nil {
		return m.SendForAlertFn(ctx, alertID, recipientKind)
	}
	return &engine.SendResult{}, nil
}

func (m *mockAlertService) MarkAlertAsRead(ctx context.Context, alertID, userID string) error {
	if m.MarkAlertAsReadFn != nil {
		return m.MarkAlertAsReadFn(ctx, alertID, userID)
	}
	return nil
}

func (m *mockAlertService) DismissAlert(ctx context.Context, alertID, userID string) error {
	if m.DismissAlertFn != nil {
		return m.DismissAlertFn(ctx, alertID, userID)
	}
	return nil
}

// mockSweepService implements SweepService.
type mockSweepService struct {
	RunManualCheckFn func(ctx context.Context) (*scheduler.ManualCheckResult, error)
}

func (m *mockSweepService) RunManualCheck(ctx context.Context) (*scheduler.ManualCheckResult, error) {
	if m.RunManualCheckFn != nil {
		return m.RunManualCheckFn(ctx)
	}
	return &scheduler.ManualCheckResult{Message: fmt.Sprintf("Verificação concluída: %d alerta(s) criado(s)", 0)}, nil
}

// mockMetricsSource implements MetricsSource.
type mockMetricsSource struct {
	snapshot *metrics.Snapshot
}

func (m *mockMetricsSource) GetSnapshot() *metrics.Snapshot {
	return m.snapshot
}
