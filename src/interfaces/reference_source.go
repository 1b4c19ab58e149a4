package interfaces

import (
	"context"

	"sp500-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IReferenceSource provides the table of valid index constituents.
// -----------------------------------------------------------------------------

type IReferenceSource interface {

	// -----------------------------------------------------------------------------

	// Load returns the reference table. Implementations fetch it at most once
	// per process and hand back the same value afterwards.
	Load(ctx context.Context) (*models.MReferenceTable, error)

	// -----------------------------------------------------------------------------

	// Cached returns the stored table without fetching.
	Cached() (*models.MReferenceTable, bool)
}
