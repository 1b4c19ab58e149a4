package utils

import (
	"strings"
	"sync"
	"time"

	"sp500-dashboard/src/models"

	"github.com/scmhub/calendar"
)

// DefaultMIC is the exchange assumed for symbols without a market suffix.
const DefaultMIC = "xnys"

// suffixMIC maps Yahoo ticker suffixes to ISO 10383 MIC codes known to scmhub/calendar.
var suffixMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
}

var calendars sync.Map // mic -> *TradingCalendar

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol returns the exchange for a ticker. Class shares such as BRK.B
// have no known suffix and map to the default exchange.
func MICForSymbol(symbol string) string {
	if i := strings.LastIndexByte(symbol, '.'); i >= 0 {
		if mic, ok := suffixMIC[strings.ToUpper(symbol[i:])]; ok {
			return mic
		}
	}
	return DefaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar returns the calendar of the symbol's exchange. Calendars are built
// once per MIC.
func GetCalendar(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)
	if tc, ok := calendars.Load(mic); ok {
		return tc.(*TradingCalendar)
	}
	tc, _ := calendars.LoadOrStore(mic, loadCalendar(mic))
	return tc.(*TradingCalendar)
}

func loadCalendar(mic string) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != DefaultMIC {
		mic = DefaultMIC
		cal = calendar.GetCalendar(mic)
	}

	if cal == nil {
		// Mon-Fri 09:30-16:00 New York
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpen checks if the market is in its regular session at t.
func (tc *TradingCalendar) IsOpen(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// Status reports the exchange state at t.
func (tc *TradingCalendar) Status(t time.Time) models.MMarketStatus {
	tz := "UTC"
	if tc.Timezone != nil {
		tz = tc.Timezone.String()
	}
	return models.MMarketStatus{
		MIC:        tc.MIC,
		Timezone:   tz,
		TradingDay: tc.IsTradingDay(t),
		Open:       tc.IsOpen(t),
		Fallback:   tc.Fallback,
		CheckedAt:  t.UTC(),
	}
}
