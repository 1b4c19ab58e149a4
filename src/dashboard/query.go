package dashboard

import (
	"strings"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/models"
)

// ParseQuery builds a query from raw form or API values. Blank period and
// interval fall back to the sidebar defaults; unknown tokens are rejected.
func ParseQuery(symbol, period, interval string) (models.MQuerySpec, error) {
	p := models.DefaultPeriod
	if period = strings.TrimSpace(period); period != "" {
		var ok bool
		if p, ok = models.ParsePeriod(period); !ok {
			return models.MQuerySpec{}, helpers.NewValidationError("unknown period %q", period)
		}
	}

	iv := models.DefaultInterval
	if interval = strings.TrimSpace(interval); interval != "" {
		var ok bool
		if iv, ok = models.ParseInterval(interval); !ok {
			return models.MQuerySpec{}, helpers.NewValidationError("unknown interval %q", interval)
		}
	}

	return models.NewQuerySpec(symbol, p, iv), nil
}
