package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjd/job-scam-detector/internal/domain"
	_ "github.com/lib/pq"
)

// PostgresStore implements ports.ReportLog and ports.ReportReader for PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL storage instance
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Report writes are small and infrequent
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the report table if it doesn't exist
func (s *PostgresStore) InitSchema() error {
	schema := `
	-- ============================================================================
	-- SCAM_REPORTS TABLE
	-- ============================================================================
	-- Append-only log of every analysis. Rows are never updated.
	--
	-- reasons is a JSONB array of {kind, message}; it is always read together
	-- with its report. evidence is a JSONB array of the evidence kinds supplied.
	-- text holds the full combined corpus the verdict was computed from.
	CREATE TABLE IF NOT EXISTS scam_reports (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		score SMALLINT NOT NULL CHECK (score BETWEEN 0 AND 100),
		label VARCHAR(16) NOT NULL,
		color VARCHAR(8) NOT NULL,
		confidence VARCHAR(8) NOT NULL,
		reasons JSONB NOT NULL,
		evidence JSONB NOT NULL,
		document_filename TEXT,
		text_preview TEXT,
		text TEXT
	);

	-- Backs HighRisk: filters on label, newest first
	CREATE INDEX IF NOT EXISTS idx_scam_reports_label ON scam_reports(label, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Append inserts one report
func (s *PostgresStore) Append(ctx context.Context, rec domain.ReportRecord) error {
	e, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scam_reports (
			id, created_at, score, label, color, confidence,
			reasons, evidence, document_filename, text_preview, text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt, e.Score, e.Label, e.Color, e.Confidence,
		e.Reasons, e.Evidence, e.DocumentFilename, e.TextPreview, e.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report %s: %w", e.ID, err)
	}
	return nil
}

// HighRisk retrieves the most recent HIGH RISK reports
func (s *PostgresStore) HighRisk(ctx context.Context, limit int) ([]domain.FusedReport, error) {
	query := `
		SELECT id, created_at, score, label, color, confidence,
		       reasons, evidence, text_preview
		FROM scam_reports
		WHERE label = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(domain.LabelHighRisk), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]domain.FusedReport, 0)
	for rows.Next() {
		var (
			report                    domain.FusedReport
			reasonsJSON, evidenceJSON []byte
			preview                   sql.NullString
		)
		err := rows.Scan(
			&report.ID, &report.CreatedAt, &report.FinalScore, &report.Label,
			&report.Color, &report.Confidence, &reasonsJSON, &evidenceJSON, &preview,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(reasonsJSON, &report.Reasons); err != nil {
			return nil, fmt.Errorf("failed to decode reasons of %s: %w", report.ID, err)
		}
		if err := json.Unmarshal(evidenceJSON, &report.Evidence); err != nil {
			return nil, fmt.Errorf("failed to decode evidence of %s: %w", report.ID, err)
		}
		report.TextPreview = preview.String
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
