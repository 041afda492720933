// Package database provides database operations for internships and alerts.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// alertColumns is the full alert projection used by every query.
const alertColumns = `
	alert_id, internship_id, internship_type, alert_type, title, message,
	days_until_expiration, target_users, COALESCE(whatsapp_link, ''),
	status, is_active, sent_at, read_at, dismissed_at, created_at, updated_at
`

// FindPendingAlert looks up an undispatched alert for the given
// internship and alert type. An alert is pending while sent_at is
// unset; that is the dedup key that keeps the periodic sweep from
// re-alerting the same near-expiration event. Returns (nil, nil) when
// no pending alert exists.
func (db *DB) FindPendingAlert(ctx context.Context, internshipID, internshipType, alertType string) (*Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		WHERE internship_id = $1
		  AND internship_type = $2
		  AND alert_type = $3
		  AND sent_at IS NULL
	`, alertColumns)

	row := db.conn.QueryRowContext(ctx, query, internshipID, internshipType, alertType)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending alert: %w", err)
	}
	return alert, nil
}

// InsertAlert creates a new alert in pending status. The partial
// unique index on (internship_id, internship_type, alert_type) WHERE
// sent_at IS NULL makes the check-then-create sequence safe under
// concurrent sweeps.
func (db *DB) InsertAlert(ctx context.Context, params NewAlertParams) (*Alert, error) {
	query := fmt.Sprintf(`
		INSERT INTO alerts (
			internship_id, internship_type, alert_type, title, message,
			days_until_expiration, target_users, status, is_active,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', TRUE, NOW(), NOW())
		RETURNING %s
	`, alertColumns)

	row := db.conn.QueryRowContext(ctx, query,
		params.InternshipID,
		params.InternshipType,
		params.AlertType,
		params.Title,
		params.Message,
		params.DaysUntilExpiration,
		pq.Array(params.TargetUsers),
	)
	alert, err := scanAlert(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return nil, fmt.Errorf("pending alert already exists for internship %s (%s)", params.InternshipID, params.InternshipType)
		}
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}
	return alert, nil
}

// GetAlert retrieves an alert by ID.
func (db *DB) GetAlert(ctx context.Context, alertID string) (*Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM alerts
		WHERE alert_id = $1
	`, alertColumns)

	row := db.conn.QueryRowContext(ctx, query, alertID)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("alert not found: %s", alertID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// MarkAlertSent records the generated link, stamps sent_at, and moves
// status to "sent". "Sent" means the link was generated, not that any
// message was delivered.
func (db *DB) MarkAlertSent(ctx context.Context, alertID, link string) error {
	query := `
		UPDATE alerts
		SET whatsapp_link = $2,
		    sent_at = NOW(),
		    status = 'sent',
		    updated_at = NOW()
		WHERE alert_id = $1
	`
	return db.execAlertUpdate(ctx, query, "mark alert sent", alertID, link)
}

// MarkAlertRead stamps read_at. Calling it again overwrites the
// earlier timestamp with the same semantics; not an error.
func (db *DB) MarkAlertRead(ctx context.Context, alertID string) error {
	query := `
		UPDATE alerts
		SET read_at = NOW(),
		    updated_at = NOW()
		WHERE alert_id = $1
	`
	return db.execAlertUpdate(ctx, query, "mark alert read", alertID)
}

// DismissAlert stamps dismissed_at and deactivates the alert in one
// statement. Alerts are never hard-deleted.
func (db *DB) DismissAlert(ctx context.Context, alertID string) error {
	query := `
		UPDATE alerts
		SET dismissed_at = NOW(),
		    is_active = FALSE,
		    updated_at = NOW()
		WHERE alert_id = $1
	`
	return db.execAlertUpdate(ctx, query, "dismiss alert", alertID)
}

func (db *DB) execAlertUpdate(ctx context.Context, query, operation, alertID string, extraArgs ...any) error {
	args := append([]any{alertID}, extraArgs...)
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found: %s", alertID)
	}
	return nil
}

// ListActiveAlerts retrieves alerts that are still live: is_active and
// not dismissed. When userID is non-nil the result is restricted to
// alerts targeting that user.
func (db *DB) ListActiveAlerts(ctx context.Context, userID *string) ([]*Alert, error) {
	var query string
	var args []interface{}

	if userID != nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM alerts
			WHERE is_active = TRUE
			  AND dismissed_at IS NULL
			  AND $1 = ANY(target_users)
			ORDER BY created_at DESC
		`, alertColumns)
		args = []interface{}{*userID}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM alerts
			WHERE is_active = TRUE
			  AND dismissed_at IS NULL
			ORDER BY created_at DESC
		`, alertColumns)
		args = []interface{}{}
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// CountActiveAlerts returns the number of live alerts. The manual
// check endpoint diffs this count around a sweep to report how many
// alerts the sweep created.
func (db *DB) CountActiveAlerts(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts
		WHERE is_active = TRUE
		  AND dismissed_at IS NULL
	`
	var count int
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active alerts: %w", err)
	}
	return count, nil
}

func scanAlert(row rowScanner) (*Alert, error) {
	var a Alert
	var sentAt, readAt, dismissedAt sql.NullTime
	if err := row.Scan(
		&a.AlertID,
		&a.InternshipID,
		&a.InternshipType,
		&a.AlertType,
		&a.Title,
		&a.Message,
		&a.DaysUntilExpiration,
		pq.Array(&a.TargetUsers),
		&a.WhatsAppLink,
		&a.Status,
		&a.IsActive,
		&sentAt,
		&readAt,
		&dismissedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, err
	}
	if sentAt.Valid {
		a.SentAt = &sentAt.Time
	}
	if readAt.Valid {
		a.ReadAt = &readAt.Time
	}
	if dismissedAt.Valid {
		a.DismissedAt = &dismissedAt.Time
	}
	return &a, nil
}
