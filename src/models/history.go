package models

import "time"

// Outcome values stored with each audited query.
const (
	OutcomeOK          = "ok"
	OutcomeNoData      = "no_data"
	OutcomeInvalid     = "invalid"
	OutcomeSourceError = "source_error"
	OutcomeError       = "error"
)

// MQueryRecord is one audited submission.
type MQueryRecord struct {
	Symbol    string    `json:"symbol"`
	Period    string    `json:"period"`
	Interval  string    `json:"interval"`
	Rows      int       `json:"rows"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MMarketStatus is the trading state of one exchange at CheckedAt.
type MMarketStatus struct {
	MIC        string    `json:"mic"`
	Timezone   string    `json:"timezone"`
	TradingDay bool      `json:"trading_day"`
	Open       bool      `json:"open"`
	Fallback   bool      `json:"fallback"`
	CheckedAt  time.Time `json:"checked_at"`
}
