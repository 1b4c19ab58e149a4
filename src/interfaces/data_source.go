package interfaces

import (
	"context"

	"sp500-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching price history from a market-data provider.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchSeries retrieves OHLCV bars for one query, ascending by timestamp.
	// An empty series with a nil error means the provider had no rows.
	FetchSeries(ctx context.Context, query models.MQuerySpec) (*models.MPriceSeries, error)
}
