package utils

import (
	"testing"
	"time"
)

func TestMICForSymbol(t *testing.T) {
	cases := map[string]string{
		"AAPL":   "xnys",
		"BRK.B":  "xnys",
		"BF.B":   "xnys",
		"RY.TO":  "xtse",
		"VOD.L":  "xlon",
		"7203.T": "xtks",
	}
	for symbol, want := range cases {
		if got := MICForSymbol(symbol); got != want {
			t.Errorf("MICForSymbol(%q) = %q, want %q", symbol, got, want)
		}
	}
}

func TestGetCalendar_ReusesPerMIC(t *testing.T) {
	a := GetCalendar("AAPL")
	b := GetCalendar("MMM")
	if a != b {
		t.Error("expected one calendar per exchange")
	}
	if a.MIC != "xnys" {
		t.Errorf("unexpected mic %s", a.MIC)
	}
}

func TestGetCalendar_WeekendIsClosed(t *testing.T) {
	tc := GetCalendar("AAPL")
	// Saturday 2024-06-08, midday in New York
	sat := time.Date(2024, 6, 8, 16, 0, 0, 0, time.UTC)
	if tc.IsTradingDay(sat) {
		t.Error("saturday should not be a trading day")
	}
	if tc.IsOpen(sat) {
		t.Error("market should be closed on saturday")
	}
}

func TestFallbackCalendar(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	tc := &TradingCalendar{MIC: "xnys", Fallback: true, Timezone: ny}

	// Wednesday 2024-01-10
	cases := []struct {
		at   time.Time
		open bool
	}{
		{time.Date(2024, 1, 10, 9, 29, 0, 0, ny), false},
		{time.Date(2024, 1, 10, 9, 30, 0, 0, ny), true},
		{time.Date(2024, 1, 10, 15, 59, 0, 0, ny), true},
		{time.Date(2024, 1, 10, 16, 0, 0, 0, ny), false},
		{time.Date(2024, 1, 13, 12, 0, 0, 0, ny), false},
	}
	for _, c := range cases {
		if got := tc.IsOpen(c.at); got != c.open {
			t.Errorf("IsOpen(%v) = %v, want %v", c.at, got, c.open)
		}
	}

	st := tc.Status(time.Date(2024, 1, 10, 10, 0, 0, 0, ny))
	if !st.Open || !st.TradingDay || !st.Fallback || st.MIC != "xnys" || st.Timezone != "EST" {
		t.Errorf("unexpected status %+v", st)
	}
}
