package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geniusisme/falldice/internal/attack"
	"github.com/geniusisme/falldice/internal/report"
)

// ErrEmptyFingerprint is returned when saving an entry without a fingerprint.
var ErrEmptyFingerprint = errors.New("report has no fingerprint")

// Record is a stored report entry.
type Record struct {
	ID        int64
	Entry     report.Entry
	CreatedAt time.Time
	UpdatedAt time.Time
}

const reportColumns = "id, fingerprint, name, scores, mass, combinations, created_at, updated_at"

// SaveReport stores the entry, replacing any earlier report with the same
// fingerprint, and returns the stored record.
func (d *Database) SaveReport(entry report.Entry) (*Record, error) {
	if entry.Fingerprint == "" {
		return nil, ErrEmptyFingerprint
	}

	scores, err := encodeScores(entry.Scores)
	if err != nil {
		return nil, err
	}

	_, err = d.db.Exec(d.qb.Build(
		`INSERT INTO reports (fingerprint, name, scores, mass, combinations)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET
			name = excluded.name,
			scores = excluded.scores,
			mass = excluded.mass,
			combinations = excluded.combinations,
			updated_at = CURRENT_TIMESTAMP`),
		entry.Fingerprint, entry.Name, scores, entry.Mass, entry.Combinations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save report %s: %w", entry.Name, err)
	}

	return d.GetReport(entry.Fingerprint)
}

// ImportReport copies a record from another database, keeping its timestamps.
// A report with the same fingerprint is left alone; the result reports whether
// the record was inserted.
func (d *Database) ImportReport(rec *Record) (bool, error) {
	if rec.Entry.Fingerprint == "" {
		return false, ErrEmptyFingerprint
	}

	scores, err := encodeScores(rec.Entry.Scores)
	if err != nil {
		return false, err
	}

	result, err := d.db.Exec(d.qb.Build(
		`INSERT INTO reports (fingerprint, name, scores, mass, combinations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING`),
		rec.Entry.Fingerprint, rec.Entry.Name, scores, rec.Entry.Mass, rec.Entry.Combinations,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to import report %s: %w", rec.Entry.Name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetReport returns the report with the given fingerprint, or nil if there is none.
func (d *Database) GetReport(fingerprint string) (*Record, error) {
	row := d.db.QueryRow(d.qb.Build(
		"SELECT "+reportColumns+" FROM reports WHERE fingerprint = ?"), fingerprint)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return record, nil
}

// ListReports returns up to limit reports, most recently created first.
// A limit of zero or less returns every report.
func (d *Database) ListReports(limit int) ([]*Record, error) {
	query := "SELECT " + reportColumns + " FROM reports ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteReport removes the report with the given fingerprint. It reports
// whether a report was removed.
func (d *Database) DeleteReport(fingerprint string) (bool, error) {
	result, err := d.db.Exec(d.qb.Build("DELETE FROM reports WHERE fingerprint = ?"), fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountReports returns the number of stored reports.
func (d *Database) CountReports() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		record Record
		scores string
	)
	err := s.Scan(&record.ID, &record.Entry.Fingerprint, &record.Entry.Name, &scores,
		&record.Entry.Mass, &record.Entry.Combinations, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if record.Entry.Scores, err = decodeScores(scores); err != nil {
		return nil, err
	}
	return &record, nil
}

// Scores are stored as a JSON object keyed by facet name so new facets do not
// need a migration.
func encodeScores(s attack.Scores) (string, error) {
	m := make(map[string]float64, len(attack.Facets()))
	for _, f := range attack.Facets() {
		m[f.String()] = s.Get(f)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode scores: %w", err)
	}
	return string(data), nil
}

func decodeScores(data string) (attack.Scores, error) {
	var (
		m      map[string]float64
		scores attack.Scores
	)
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return scores, fmt.Errorf("failed to decode scores: %w", err)
	}
	for name, v := range m {
		f, err := attack.ParseFacet(name)
		if err != nil {
			return scores, err
		}
		scores.Set(f, v)
	}
	return scores, nil
}
