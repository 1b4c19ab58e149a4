package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a single GET request to the URL with the given query parameters.
	// Returns the response body, or a *helpers.NetworkError for non-200 responses.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
