package storage

import (
	"context"
	"fmt"
	"strings"

	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

// NewQueryRecorder picks the recorder for storage.db_type and initializes it.
func NewQueryRecorder(cfg models.MStorageConfig, log *logger.Logger) (interfaces.IQueryRecorder, error) {
	var rec interfaces.IQueryRecorder

	switch strings.ToLower(cfg.DBType) {
	case "", "none":
		rec = NoopRecorder{}
	case "sqlite":
		rec = NewSQLiteRecorder(cfg, log)
	case "postgres":
		pg, err := NewPostgresRecorder(cfg, log)
		if err != nil {
			return nil, err
		}
		rec = pg
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	if err := rec.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s recorder: %w", cfg.DBType, err)
	}
	return rec, nil
}

// -----------------------------------------------------------------------------

// NoopRecorder keeps nothing.
type NoopRecorder struct{}

func (NoopRecorder) Initialize() error { return nil }

func (NoopRecorder) RecordQuery(context.Context, models.MQueryRecord) error { return nil }

func (NoopRecorder) RecentQueries(context.Context, int) ([]models.MQueryRecord, error) {
	return []models.MQueryRecord{}, nil
}

func (NoopRecorder) Close() error { return nil }
