package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresRecorder struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresRecorder stores records in a schema named after the executable.
func NewPostgresRecorder(cfg models.MStorageConfig, log *logger.Logger) (*PostgresRecorder, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresRecorder{
		Config: cfg,
		Schema: schemaName(name),
		Logger: log,
	}, nil
}

// schemaName keeps identifier-safe characters only; quoting handles the rest.
func schemaName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
	if clean == "" {
		return "dashboard"
	}
	return clean
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Initialize() error {
	db, err := sql.Open("postgres", d.Config.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			period TEXT NOT NULL,
			bar_interval TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create query_history: %w", err)
	}

	if err := d.CleanupOldData(); err != nil {
		d.Logger.Warning("Cleanup failed: %v", err)
	}

	d.Logger.Info("Postgres recorder initialized (Schema: %s)", d.Schema)
	return nil
}

func (d *PostgresRecorder) table() string {
	return fmt.Sprintf(`"%s"."query_history"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) RecordQuery(ctx context.Context, record models.MQueryRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, period, bar_interval, row_count, outcome, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query, record.Symbol, record.Period, record.Interval, record.Rows, record.Outcome, record.Error, record.CreatedAt); err != nil {
		return fmt.Errorf("insert query_history: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) RecentQueries(ctx context.Context, limit int) ([]models.MQueryRecord, error) {
	query := fmt.Sprintf(`
		SELECT symbol, period, bar_interval, row_count, outcome, error_message, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, d.table())
	rows, err := d.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select query_history: %w", err)
	}
	defer rows.Close()

	out := []models.MQueryRecord{}
	for rows.Next() {
		var rec models.MQueryRecord
		if err := rows.Scan(&rec.Symbol, &rec.Period, &rec.Interval, &rec.Rows, &rec.Outcome, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) CleanupOldData() error {
	if d.Config.RetentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.RetentionDays)
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, d.table()), cutoff); err != nil {
		return fmt.Errorf("cleanup query_history: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
