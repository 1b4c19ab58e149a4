package models

import (
	"strconv"
	"time"
)

// MPriceBar is one OHLCV record.
type MPriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// MPriceSeries holds bars in strictly ascending timestamp order.
type MPriceSeries struct {
	Symbol   string      `json:"symbol"`
	Period   string      `json:"period"`
	Interval string      `json:"interval"`
	Currency string      `json:"currency,omitempty"`
	Exchange string      `json:"exchange,omitempty"`
	Timezone string      `json:"timezone,omitempty"`
	Bars     []MPriceBar `json:"bars"`
}

// MClosingPoint is one point of the closing price projection.
type MClosingPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
}

// MClosingSeries is the {timestamp, close} projection used for charting.
type MClosingSeries []MClosingPoint

// -----------------------------------------------------------------------------

func (s *MPriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

func (s *MPriceSeries) Empty() bool {
	return s.Len() == 0
}

// Closing projects the series to timestamps and closing prices, order preserved.
func (s *MPriceSeries) Closing() MClosingSeries {
	if s == nil {
		return MClosingSeries{}
	}
	out := make(MClosingSeries, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = MClosingPoint{Timestamp: b.Timestamp, Close: b.Close}
	}
	return out
}

// -----------------------------------------------------------------------------
// Tabular view
// -----------------------------------------------------------------------------

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05-07:00"
)

// intraday reports whether timestamps need a time-of-day component.
func (s *MPriceSeries) intraday() bool {
	if iv, ok := ParseInterval(s.Interval); ok {
		return iv.Intraday()
	}
	for _, b := range s.Bars {
		if b.Timestamp.Hour() != 0 || b.Timestamp.Minute() != 0 || b.Timestamp.Second() != 0 {
			return true
		}
	}
	return false
}

// TimeColumn is "Datetime" for intraday series and "Date" otherwise.
func (s *MPriceSeries) TimeColumn() string {
	if s.intraday() {
		return "Datetime"
	}
	return "Date"
}

// FormatTimestamp renders a bar timestamp the way the table and CSV show it.
func (s *MPriceSeries) FormatTimestamp(t time.Time) string {
	if s.intraday() {
		return t.Format(datetimeLayout)
	}
	return t.Format(dateLayout)
}

func (s *MPriceSeries) Header() []string {
	return []string{s.TimeColumn(), "Open", "High", "Low", "Close", "Volume"}
}

func (s *MPriceSeries) Records() [][]string {
	rows := make([][]string, 0, s.Len())
	if s == nil {
		return rows
	}
	for _, b := range s.Bars {
		rows = append(rows, []string{
			s.FormatTimestamp(b.Timestamp),
			FormatFloat(b.Open),
			FormatFloat(b.High),
			FormatFloat(b.Low),
			FormatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
		})
	}
	return rows
}

// FormatFloat uses the shortest representation that parses back to the same value.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// -----------------------------------------------------------------------------

// MQueryResult is everything the presentation layer needs after a fetch.
type MQueryResult struct {
	Query     MQuerySpec       `json:"query"`
	Series    *MPriceSeries    `json:"series"`
	Entry     *MReferenceEntry `json:"entry,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// MSeriesSummary describes the closing prices of one series.
type MSeriesSummary struct {
	Bars          int     `json:"bars"`
	FirstClose    float64 `json:"first_close"`
	LastClose     float64 `json:"last_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	MeanClose     float64 `json:"mean_close"`
	StdClose      float64 `json:"std_close"`
	Volatility    float64 `json:"volatility"`
	TotalVolume   int64   `json:"total_volume"`
	VolumeRatio   float64 `json:"volume_ratio"`
}
