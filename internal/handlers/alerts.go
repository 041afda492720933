// Package handlers provides HTTP handlers for the alert-service API.
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"alert-service/internal/database"
	"alert-service/internal/engine"
	"alert-service/internal/metrics"
)

// MarkReadRequest represents a request to mark an alert as read.
type MarkReadRequest struct {
	AlertID string `json:"alert_id"`
	UserID  string `json:"user_id"`
}

// DismissRequest represents a request to dismiss an alert.
type DismissRequest struct {
	AlertID string `json:"alert_id"`
	UserID  string `json:"user_id"`
}

// SendWhatsAppRequest represents a request to generate WhatsApp links
// for an existing alert.
type SendWhatsAppRequest struct {
	AlertID   string `json:"alert_id"`
	Recipient string `json:"recipient"` // student, advisor, both (default both)
}

// ListAlerts retrieves active alerts, optionally filtered by user_id.
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID := r.URL.Query().Get("user_id")
	var userIDPtr *string
	if userID != "" {
		userIDPtr = &userID
	}

	ctx := r.Context()
	alerts, err := h.alerts.GetActiveAlerts(ctx, userIDPtr)
	if err != nil {
		slog.Error("Failed to list active alerts", "error", err)
		http.Error(w, "Failed to list alerts", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []*database.Alert{}
	}

	writeJSON(w, http.StatusOK, alerts)
}

// RunCheck triggers an expiration sweep synchronously.
func (h *Handlers) RunCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	ctx := r.Context()
	result, err := h.sweeps.RunManualCheck(ctx)
	if err != nil {
		slog.Error("Manual check failed", "error", err)
		http.Error(w, "Failed to run expiration check", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// MarkRead marks an alert as read.
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req MarkReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.alerts.MarkAlertAsRead(ctx, req.AlertID, req.UserID); err != nil {
		slog.Error("Failed to mark alert as read", "error", err, "alert_id", req.AlertID)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to mark alert as read", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Alerta marcado como lido"})
}

// Dismiss dismisses an alert, removing it from active listings.
func (h *Handlers) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req DismissRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.alerts.DismissAlert(ctx, req.AlertID, req.UserID); err != nil {
		slog.Error("Failed to dismiss alert", "error", err, "alert_id", req.AlertID)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to dismiss alert", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Alerta dispensado"})
}

// SendWhatsApp generates WhatsApp links for an existing alert on demand.
func (h *Handlers) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req SendWhatsAppRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AlertID == "" {
		http.Error(w, "alert_id is required", http.StatusBadRequest)
		return
	}
	if req.Recipient == "" {
		req.Recipient = engine.RecipientBoth
	}

	ctx := r.Context()
	result, err := h.alerts.SendForAlert(ctx, req.AlertID, req.Recipient)
	if err != nil {
		slog.Error("Failed to generate WhatsApp links", "error", err, "alert_id", req.AlertID)
		if strings.Contains(err.Error(), "invalid recipient kind") {
			http.Error(w, "recipient must be one of: student, advisor, both", http.StatusBadRequest)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to generate WhatsApp links", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetMetrics returns the service's counter snapshot.
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot := &metrics.Snapshot{ServiceName: "alert-service"}
	if h.metrics != nil {
		snapshot = h.metrics.GetSnapshot()
	}

	writeJSON(w, http.StatusOK, snapshot)
}
