// Package events defines the event structures published by the alert service.
package events

import (
	"github.com/google/uuid"

	"alert-service/internal/database"
)

// SchemaVersion is the current alerts.created payload version.
const SchemaVersion = 1

// AlertCreated represents an alert creation event published to the
// alerts.created topic. Downstream consumers (dashboards, audit) use
// it to mirror alert state without polling the service.
type AlertCreated struct {
	EventID             string   `json:"event_id"`
	AlertID             string   `json:"alert_id"`
	InternshipID        string   `json:"internship_id"`
	InternshipType      string   `json:"internship_type"`
	AlertType           string   `json:"alert_type"`
	DaysUntilExpiration int      `json:"days_until_expiration"`
	TargetUsers         []string `json:"target_users"`
	CreatedAt           int64    `json:"created_at"` // Unix timestamp
	SchemaVersion       int      `json:"schema_version"`
}

// NewAlertCreated builds an AlertCreated event from a stored alert.
func NewAlertCreated(alert *database.Alert) *AlertCreated {
	return &AlertCreated{
		EventID:             uuid.NewString(),
		AlertID:             alert.AlertID,
		InternshipID:        alert.InternshipID,
		InternshipType:      alert.InternshipType,
		AlertType:           alert.AlertType,
		DaysUntilExpiration: alert.DaysUntilExpiration,
		TargetUsers:         alert.TargetUsers,
		CreatedAt:           alert.CreatedAt.Unix(),
		SchemaVersion:       SchemaVersion,
	}
}
