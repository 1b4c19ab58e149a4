package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteRecorder struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteRecorder(cfg models.MStorageConfig, log *logger.Logger) *SQLiteRecorder {
	return &SQLiteRecorder{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Initialize() error {
	dsn := d.Config.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	// one connection: ":memory:" databases are per-connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// SQLite types: INTEGER for int64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS query_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			period TEXT NOT NULL,
			bar_interval TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create query_history: %w", err)
	}
	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_query_history_created ON query_history (created_at)`); err != nil {
		return fmt.Errorf("failed to index query_history: %w", err)
	}

	if err := d.CleanupOldData(); err != nil {
		d.Logger.Warning("Cleanup failed: %v", err)
	}

	d.Logger.Info("SQLite recorder initialized (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) RecordQuery(ctx context.Context, record models.MQueryRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO query_history (symbol, period, bar_interval, row_count, outcome, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.Symbol, record.Period, record.Interval, record.Rows, record.Outcome, record.Error, record.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert query_history: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) RecentQueries(ctx context.Context, limit int) ([]models.MQueryRecord, error) {
	rows, err := d.DB.QueryContext(ctx, `
		SELECT symbol, period, bar_interval, row_count, outcome, error_message, created_at
		FROM query_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("select query_history: %w", err)
	}
	defer rows.Close()

	out := []models.MQueryRecord{}
	for rows.Next() {
		var rec models.MQueryRecord
		var created int64
		if err := rows.Scan(&rec.Symbol, &rec.Period, &rec.Interval, &rec.Rows, &rec.Outcome, &rec.Error, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------

// CleanupOldData drops records older than the configured retention. Zero keeps everything.
func (d *SQLiteRecorder) CleanupOldData() error {
	if d.Config.RetentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -d.Config.RetentionDays).UnixMilli()
	res, err := d.DB.Exec(`DELETE FROM query_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		d.Logger.Info("Removed %d query records older than %d days", n, d.Config.RetentionDays)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
