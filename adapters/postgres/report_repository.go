package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gofold/domain/core"
	"gofold/domain/estimate"
	"gofold/ports"
)

// ReportRepository persists estimate reports in PostgreSQL
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a PostgreSQL report ledger
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ ports.ReportLedger = (*ReportRepository)(nil)

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the report table when missing
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS estimate_reports (
			run_id         TEXT PRIMARY KEY,
			mean           DOUBLE PRECISION NOT NULL,
			std_dev        DOUBLE PRECISION NOT NULL,
			standard_error DOUBLE PRECISION NOT NULL,
			lower_bound    DOUBLE PRECISION NOT NULL,
			upper_bound    DOUBLE PRECISION NOT NULL,
			z              DOUBLE PRECISION NOT NULL,
			n              INTEGER NOT NULL,
			method         TEXT NOT NULL,
			samples        JSONB NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("creating estimate_reports table: %w", err)
	}
	return nil
}

// SaveReport upserts a report keyed by run ID
func (r *ReportRepository) SaveReport(ctx context.Context, report *estimate.Report) error {
	if report == nil || report.RunID == "" {
		return core.NewInvalidParameterError("report", "must carry a run ID")
	}
	samplesJSON, err := json.Marshal(report.Samples)
	if err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO estimate_reports (
			run_id, mean, std_dev, standard_error, lower_bound, upper_bound, z, n, method, samples
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			mean = EXCLUDED.mean,
			std_dev = EXCLUDED.std_dev,
			standard_error = EXCLUDED.standard_error,
			lower_bound = EXCLUDED.lower_bound,
			upper_bound = EXCLUDED.upper_bound,
			z = EXCLUDED.z,
			n = EXCLUDED.n,
			method = EXCLUDED.method,
			samples = EXCLUDED.samples`,
		report.RunID.String(), report.Mean, report.StdDev, report.StandardError,
		report.Lower, report.Upper, report.Z, report.N, string(report.Method), samplesJSON)
	if err != nil {
		return fmt.Errorf("saving report %s: %w", report.RunID, err)
	}
	return nil
}

// GetReport retrieves one report by run ID
func (r *ReportRepository) GetReport(ctx context.Context, runID core.RunID) (*estimate.Report, error) {
	var (
		report      estimate.Report
		id          string
		method      string
		samplesJSON []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT run_id, mean, std_dev, standard_error, lower_bound, upper_bound, z, n, method, samples
		FROM estimate_reports
		WHERE run_id = $1`, runID.String()).Scan(
		&id, &report.Mean, &report.StdDev, &report.StandardError,
		&report.Lower, &report.Upper, &report.Z, &report.N, &method, &samplesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", runID, err)
	}

	report.RunID = core.RunID(id)
	report.Method = estimate.IntervalMethod(method)
	if err := json.Unmarshal(samplesJSON, &report.Samples); err != nil {
		return nil, fmt.Errorf("decoding samples for %s: %w", runID, err)
	}
	return &report, nil
}

// ListReports returns the most recent reports, newest first
func (r *ReportRepository) ListReports(ctx context.Context, limit int) ([]estimate.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, mean, std_dev, standard_error, lower_bound, upper_bound, z, n, method, samples
		FROM estimate_reports
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []estimate.Report
	for rows.Next() {
		var (
			report      estimate.Report
			id          string
			method      string
			samplesJSON []byte
		)
		if err := rows.Scan(&id, &report.Mean, &report.StdDev, &report.StandardError,
			&report.Lower, &report.Upper, &report.Z, &report.N, &method, &samplesJSON); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		report.RunID = core.RunID(id)
		report.Method = estimate.IntervalMethod(method)
		if err := json.Unmarshal(samplesJSON, &report.Samples); err != nil {
			return nil, fmt.Errorf("decoding samples for %s: %w", id, err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
