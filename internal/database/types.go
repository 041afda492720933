// Package database provides database operations for internships and alerts.
package database

import (
	"time"
)

// Internship type discriminators. The two internship kinds live in
// separate tables but share the same shape for alerting purposes.
const (
	InternshipTypeMandatory    = "mandatory"
	InternshipTypeNonMandatory = "non_mandatory"
)

// Alert types. Modeled as an open set of string constants so new
// types can be added without touching the sweep loop.
const (
	AlertTypeExpirationWarning = "expiration_warning"
)

// Alert status values. Status tracks sent_at: "pending" until a link
// is generated, "sent" after.
const (
	AlertStatusPending = "pending"
	AlertStatusSent    = "sent"
)

// Internship represents an internship record joined with its student
// and advisor. Read-only input to the alert engine.
type Internship struct {
	InternshipID       string    `json:"internship_id"`
	InternshipType     string    `json:"internship_type"`
	StudentID          string    `json:"student_id"`
	StudentName        string    `json:"student_name"`
	RegistrationNumber string    `json:"registration_number"`
	StudentPhone       string    `json:"student_phone"`
	AdvisorID          string    `json:"advisor_id"`
	AdvisorName        string    `json:"advisor_name"`
	AdvisorPhone       string    `json:"advisor_phone"`
	EndDate            time.Time `json:"end_date"`
}

// Alert represents an alert record in the database.
type Alert struct {
	AlertID             string     `json:"alert_id"`
	InternshipID        string     `json:"internship_id"`
	InternshipType      string     `json:"internship_type"`
	AlertType           string     `json:"alert_type"`
	Title               string     `json:"title"`
	Message             string     `json:"message"`
	DaysUntilExpiration int        `json:"days_until_expiration"`
	TargetUsers         []string   `json:"target_users"`
	WhatsAppLink        string     `json:"whatsapp_link,omitempty"`
	Status              string     `json:"status"`
	IsActive            bool       `json:"is_active"`
	SentAt              *time.Time `json:"sent_at,omitempty"`
	ReadAt              *time.Time `json:"read_at,omitempty"`
	DismissedAt         *time.Time `json:"dismissed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewAlertParams holds the fields needed to insert a new alert.
// The alert_id, status, is_active, and timestamps are assigned by the
// database.
type NewAlertParams struct {
	InternshipID        string
	InternshipType      string
	AlertType           string
	Title               string
	Message             string
	DaysUntilExpiration int
	TargetUsers         []string
}
