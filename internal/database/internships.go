// Package database provides database operations for internships and alerts.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// internshipColumns is the joined projection shared by both
// internship tables. The student and advisor rows are joined in so
// the engine never issues follow-up lookups per record.
const internshipColumns = `
	i.internship_id,
	i.student_id,
	s.name,
	s.registration_number,
	COALESCE(s.phone, ''),
	i.advisor_id,
	a.name,
	COALESCE(a.phone, ''),
	i.end_date
`

// tableForType maps an internship type discriminator to its table name.
func tableForType(internshipType string) (string, error) {
	switch internshipType {
	case InternshipTypeMandatory:
		return "mandatory_internships", nil
	case InternshipTypeNonMandatory:
		return "non_mandatory_internships", nil
	default:
		return "", fmt.Errorf("unknown internship type: %s", internshipType)
	}
}

// ListExpiringMandatory retrieves active mandatory internships whose
// end date falls between now and notAfter, both bounds inclusive.
func (db *DB) ListExpiringMandatory(ctx context.Context, notAfter time.Time) ([]*Internship, error) {
	return db.listExpiring(ctx, InternshipTypeMandatory, notAfter)
}

// ListExpiringNonMandatory retrieves active non-mandatory internships
// whose end date falls between now and notAfter, both bounds inclusive.
func (db *DB) ListExpiringNonMandatory(ctx context.Context, notAfter time.Time) ([]*Internship, error) {
	return db.listExpiring(ctx, InternshipTypeNonMandatory, notAfter)
}

func (db *DB) listExpiring(ctx context.Context, internshipType string, notAfter time.Time) ([]*Internship, error) {
	table, err := tableForType(internshipType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		JOIN students s ON s.student_id = i.student_id
		JOIN advisors a ON a.advisor_id = i.advisor_id
		WHERE i.is_active = TRUE
		  AND i.end_date IS NOT NULL
		  AND i.end_date >= NOW()
		  AND i.end_date <= $1
		ORDER BY i.end_date ASC
	`, internshipColumns, table)

	rows, err := db.conn.QueryContext(ctx, query, notAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring %s internships: %w", internshipType, err)
	}
	defer rows.Close()

	var internships []*Internship
	for rows.Next() {
		internship, err := scanInternship(rows, internshipType)
		if err != nil {
			return nil, err
		}
		internships = append(internships, internship)
	}
	return internships, rows.Err()
}

// GetInternship retrieves a single internship with its student and
// advisor by ID and type discriminator.
func (db *DB) GetInternship(ctx context.Context, internshipID, internshipType string) (*Internship, error) {
	table, err := tableForType(internshipType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		JOIN students s ON s.student_id = i.student_id
		JOIN advisors a ON a.advisor_id = i.advisor_id
		WHERE i.internship_id = $1
	`, internshipColumns, table)

	row := db.conn.QueryRowContext(ctx, query, internshipID)
	internship, err := scanInternship(row, internshipType)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("internship not found: %s (%s)", internshipID, internshipType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}
	return internship, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInternship(row rowScanner, internshipType string) (*Internship, error) {
	var i Internship
	i.InternshipType = internshipType
	if err := row.Scan(
		&i.InternshipID,
		&i.StudentID,
		&i.StudentName,
		&i.RegistrationNumber,
		&i.StudentPhone,
		&i.AdvisorID,
		&i.AdvisorName,
		&i.AdvisorPhone,
		&i.EndDate,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan internship: %w", err)
	}
	return &i, nil
}
