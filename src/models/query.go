package models

import (
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Period
// -----------------------------------------------------------------------------

// Period is the total span of history requested. The zero value is invalid.
type Period uint8

const (
	Period1d Period = iota + 1
	Period5d
	Period1mo
	Period3mo
	Period6mo
	Period1y
	Period5y
	Period10y
	PeriodYTD
	PeriodMax
)

var periodTokens = [...]string{
	Period1d:  "1d",
	Period5d:  "5d",
	Period1mo: "1mo",
	Period3mo: "3mo",
	Period6mo: "6mo",
	Period1y:  "1y",
	Period5y:  "5y",
	Period10y: "10y",
	PeriodYTD: "ytd",
	PeriodMax: "max",
}

// DefaultPeriod is preselected in the sidebar.
const DefaultPeriod = PeriodYTD

func (p Period) Valid() bool {
	return p >= Period1d && p <= PeriodMax
}

func (p Period) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Period(%d)", uint8(p))
	}
	return periodTokens[p]
}

// ParsePeriod maps a provider token such as "1mo" to its Period.
func ParsePeriod(token string) (Period, bool) {
	for p := Period1d; p <= PeriodMax; p++ {
		if periodTokens[p] == token {
			return p, true
		}
	}
	return 0, false
}

// AllPeriods lists every period in display order.
func AllPeriods() []Period {
	out := make([]Period, 0, int(PeriodMax))
	for p := Period1d; p <= PeriodMax; p++ {
		out = append(out, p)
	}
	return out
}

// -----------------------------------------------------------------------------
// Interval
// -----------------------------------------------------------------------------

// Interval is the sampling granularity within a period. The zero value is invalid.
type Interval uint8

const (
	Interval1m Interval = iota + 1
	Interval2m
	Interval5m
	Interval15m
	Interval30m
	Interval60m
	Interval90m
	Interval1h
	Interval1d
	Interval5d
	Interval1wk
	Interval1mo
	Interval3mo
)

var intervalTokens = [...]string{
	Interval1m:  "1m",
	Interval2m:  "2m",
	Interval5m:  "5m",
	Interval15m: "15m",
	Interval30m: "30m",
	Interval60m: "60m",
	Interval90m: "90m",
	Interval1h:  "1h",
	Interval1d:  "1d",
	Interval5d:  "5d",
	Interval1wk: "1wk",
	Interval1mo: "1mo",
	Interval3mo: "3mo",
}

const DefaultInterval = Interval1d

func (i Interval) Valid() bool {
	return i >= Interval1m && i <= Interval3mo
}

func (i Interval) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Interval(%d)", uint8(i))
	}
	return intervalTokens[i]
}

// Intraday reports whether bars are finer than one trading day.
func (i Interval) Intraday() bool {
	return i.Valid() && i < Interval1d
}

func ParseInterval(token string) (Interval, bool) {
	for i := Interval1m; i <= Interval3mo; i++ {
		if intervalTokens[i] == token {
			return i, true
		}
	}
	return 0, false
}

func AllIntervals() []Interval {
	out := make([]Interval, 0, int(Interval3mo))
	for i := Interval1m; i <= Interval3mo; i++ {
		out = append(out, i)
	}
	return out
}

// -----------------------------------------------------------------------------
// Query
// -----------------------------------------------------------------------------

// MQuerySpec is one user submission. It is built fresh for every request.
type MQuerySpec struct {
	Symbol   string   `json:"symbol"`
	Period   Period   `json:"-"`
	Interval Interval `json:"-"`
}

// NewQuerySpec trims surrounding whitespace from the symbol and nothing else.
func NewQuerySpec(symbol string, period Period, interval Interval) MQuerySpec {
	return MQuerySpec{
		Symbol:   strings.TrimSpace(symbol),
		Period:   period,
		Interval: interval,
	}
}

func (q MQuerySpec) String() string {
	return fmt.Sprintf("%s[%s/%s]", q.Symbol, q.Period, q.Interval)
}

// -----------------------------------------------------------------------------

// MQueryCommand is the wire form of a query, used by the JSON API and WebSocket.
type MQueryCommand struct {
	Command  string `json:"command" form:"command"`
	Symbol   string `json:"symbol" form:"symbol"`
	Period   string `json:"period" form:"period"`
	Interval string `json:"interval" form:"interval"`
}
