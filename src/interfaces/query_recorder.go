package interfaces

import (
	"context"

	"sp500-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IQueryRecorder defines the contract for the query audit log.
// -----------------------------------------------------------------------------

type IQueryRecorder interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// RecordQuery appends one audited submission.
	RecordQuery(ctx context.Context, record models.MQueryRecord) error

	// -----------------------------------------------------------------------------

	// RecentQueries returns up to limit records, newest first.
	RecentQueries(ctx context.Context, limit int) ([]models.MQueryRecord, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
