package yahoo

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
	"sp500-dashboard/src/network"
)

// five daily AAPL bars, one with null cells
const aaplDaily = `{"chart":{"result":[{
 "meta":{"currency":"USD","symbol":"AAPL","exchangeName":"NMS","gmtoffset":-14400,"timezone":"EDT","exchangeTimezoneName":"America/New_York","dataGranularity":"1d","range":"1mo"},
 "timestamp":[1717162200,1717421400,1717507800,1717594200,1717680600],
 "indicators":{
  "quote":[{
   "open":[191.44,192.9,194.64,null,195.69],
   "high":[192.57,194.99,195.32,null,196.5],
   "low":[189.91,192.52,193.03,null,194.17],
   "close":[192.25,194.03,194.35,null,194.48],
   "volume":[75158300,50080500,47471400,null,41181800]
  }],
  "adjclose":[{"adjclose":[192.25,194.03,194.35,null,194.48]}]
 }
}],"error":null}}`

const notFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

// -----------------------------------------------------------------------------

type fakeNetwork struct {
	handler func(url string, params map[string]string) ([]byte, error)
	calls   atomic.Int64
	last    map[string]string
	lastURL string
}

func (f *fakeNetwork) Get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	f.calls.Add(1)
	f.lastURL = url
	f.last = params
	return f.handler(url, params)
}

func body(s string) func(string, map[string]string) ([]byte, error) {
	return func(string, map[string]string) ([]byte, error) { return []byte(s), nil }
}

func testConfig() models.MProviderConfig {
	return models.MProviderConfig{
		BaseURL:         "https://query1.example.test",
		MaxSymbolLength: 12,
		IncludePrePost:  false,
		AutoAdjust:      true,
	}
}

func newTestSource(net *fakeNetwork) *YahooFinanceSource {
	l := logger.NewLogger(nil, "test")
	l.SetOutput(io.Discard)
	return NewYahooFinanceSource(testConfig(), net, l)
}

func assertAscending(t *testing.T, s *models.MPriceSeries) {
	t.Helper()
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			t.Fatalf("bar %d (%v) is not after bar %d (%v)", i, s.Bars[i].Timestamp, i-1, s.Bars[i-1].Timestamp)
		}
	}
}

// -----------------------------------------------------------------------------

func TestFetchSeries_ParsesDailyBars(t *testing.T) {
	net := &fakeNetwork{handler: body(aaplDaily)}
	src := newTestSource(net)

	series, err := src.FetchSeries(context.Background(), models.NewQuerySpec("AAPL", models.Period1mo, models.Interval1d))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if series.Len() != 4 {
		t.Fatalf("expected 4 bars after dropping the null row, got %d", series.Len())
	}
	if series.Currency != "USD" || series.Exchange != "NMS" {
		t.Errorf("unexpected meta %s/%s", series.Currency, series.Exchange)
	}
	if series.Period != "1mo" || series.Interval != "1d" {
		t.Errorf("unexpected query echo %s/%s", series.Period, series.Interval)
	}
	for i, b := range series.Bars {
		if b.Low > math.Min(b.Open, b.Close) || b.High < math.Max(b.Open, b.Close) {
			t.Errorf("bar %d violates low <= open,close <= high: %+v", i, b)
		}
		if b.Volume < 0 {
			t.Errorf("bar %d has negative volume", i)
		}
	}
	assertAscending(t, series)

	if series.Bars[0].Close != 192.25 || series.Bars[0].Volume != 75158300 {
		t.Errorf("unexpected first bar %+v", series.Bars[0])
	}
	if series.TimeColumn() != "Date" {
		t.Errorf("daily series should use Date column, got %s", series.TimeColumn())
	}
}

func TestFetchSeries_SendsProviderParams(t *testing.T) {
	net := &fakeNetwork{handler: body(aaplDaily)}
	src := newTestSource(net)

	if _, err := src.FetchSeries(context.Background(), models.NewQuerySpec("BRK.B", models.PeriodYTD, models.Interval1wk)); err != nil {
		t.Fatal(err)
	}
	if net.lastURL != "https://query1.example.test/v8/finance/chart/BRK.B" {
		t.Errorf("unexpected url %s", net.lastURL)
	}
	want := map[string]string{
		"range":                "ytd",
		"interval":             "1wk",
		"includePrePost":       "false",
		"includeAdjustedClose": "true",
	}
	for k, v := range want {
		if net.last[k] != v {
			t.Errorf("param %s = %q, want %q", k, net.last[k], v)
		}
	}
}

func TestFetchSeries_SortsAndDeduplicates(t *testing.T) {
	payload := `{"chart":{"result":[{"meta":{"currency":"USD","exchangeTimezoneName":"America/New_York"},
	 "timestamp":[300,100,200,100],
	 "indicators":{"quote":[{
	  "open":[3,1,2,1.5],"high":[3,1,2,1.5],"low":[3,1,2,1.5],"close":[3,1,2,1.5],"volume":[30,10,20,15]
	 }]}}],"error":null}}`
	src := newTestSource(&fakeNetwork{handler: body(payload)})

	series, err := src.FetchSeries(context.Background(), models.NewQuerySpec("MMM", models.Period5d, models.Interval1m))
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", series.Len())
	}
	assertAscending(t, series)
	// the later row wins for a repeated timestamp
	if series.Bars[0].Close != 1.5 || series.Bars[0].Volume != 15 {
		t.Errorf("expected the last duplicate to win, got %+v", series.Bars[0])
	}
	if series.TimeColumn() != "Datetime" {
		t.Errorf("intraday series should use Datetime column, got %s", series.TimeColumn())
	}
}

func TestFetchSeries_AutoAdjust(t *testing.T) {
	payload := `{"chart":{"result":[{"meta":{},
	 "timestamp":[100],
	 "indicators":{"quote":[{"open":[100],"high":[110],"low":[90],"close":[100],"volume":[1]}],
	 "adjclose":[{"adjclose":[50]}]}}],"error":null}}`

	src := newTestSource(&fakeNetwork{handler: body(payload)})
	series, err := src.FetchSeries(context.Background(), models.NewQuerySpec("X", models.Period1d, models.Interval1d))
	if err != nil {
		t.Fatal(err)
	}
	b := series.Bars[0]
	if b.Open != 50 || b.High != 55 || b.Low != 45 || b.Close != 50 {
		t.Errorf("unexpected adjusted bar %+v", b)
	}

	raw := newTestSource(&fakeNetwork{handler: body(payload)})
	raw.Config.AutoAdjust = false
	series, err = raw.FetchSeries(context.Background(), models.NewQuerySpec("X", models.Period1d, models.Interval1d))
	if err != nil {
		t.Fatal(err)
	}
	if series.Bars[0].Close != 100 {
		t.Errorf("expected raw close, got %v", series.Bars[0].Close)
	}
}

func TestFetchSeries_EmptyResultIsNotAnError(t *testing.T) {
	payloads := []string{
		`{"chart":{"result":[],"error":null}}`,
		`{"chart":{"result":[{"meta":{"currency":"USD"},"indicators":{"quote":[{}]}}],"error":null}}`,
	}
	for i, p := range payloads {
		src := newTestSource(&fakeNetwork{handler: body(p)})
		series, err := src.FetchSeries(context.Background(), models.NewQuerySpec("AAPL", models.Period1d, models.Interval1m))
		if err != nil {
			t.Errorf("payload %d: unexpected error %v", i, err)
			continue
		}
		if !series.Empty() {
			t.Errorf("payload %d: expected empty series, got %d bars", i, series.Len())
		}
	}
}

func TestFetchSeries_UnknownSymbolIsDataSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(notFound))
	}))
	defer srv.Close()

	l := logger.NewLogger(nil, "test")
	l.SetOutput(io.Discard)
	netMgr := network.NewHTTPNetworkManager(&models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}, l)
	cfg := testConfig()
	cfg.BaseURL = srv.URL
	src := NewYahooFinanceSource(cfg, netMgr, l)

	_, err := src.FetchSeries(context.Background(), models.NewQuerySpec("ZZZZZNOPE", models.Period1mo, models.Interval1d))
	if helpers.Classify(err) != helpers.KindDataSource {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if !strings.Contains(err.Error(), "No data found") {
		t.Errorf("expected provider description in error, got %q", err.Error())
	}
}

func TestFetchSeries_ErrorEnvelopeWith200(t *testing.T) {
	src := newTestSource(&fakeNetwork{handler: body(notFound)})
	_, err := src.FetchSeries(context.Background(), models.NewQuerySpec("ZZZZZNOPE", models.Period1mo, models.Interval1d))
	if helpers.Classify(err) != helpers.KindDataSource {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestFetchSeries_MalformedJSON(t *testing.T) {
	src := newTestSource(&fakeNetwork{handler: body("<html>captcha</html>")})
	_, err := src.FetchSeries(context.Background(), models.NewQuerySpec("AAPL", models.Period1mo, models.Interval1d))
	if helpers.Classify(err) != helpers.KindDataSource {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
}

func TestFetchSeries_InputChecks(t *testing.T) {
	cases := []struct {
		name  string
		query models.MQuerySpec
		kind  helpers.ErrorKind
	}{
		{"empty symbol", models.NewQuerySpec("   ", models.Period1mo, models.Interval1d), helpers.KindDataSource},
		{"symbol too long", models.NewQuerySpec("ABCDEFGHIJKLM", models.Period1mo, models.Interval1d), helpers.KindValidation},
		{"zero period", models.MQuerySpec{Symbol: "AAPL", Interval: models.Interval1d}, helpers.KindValidation},
		{"bad interval", models.MQuerySpec{Symbol: "AAPL", Period: models.Period1mo, Interval: models.Interval(99)}, helpers.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			net := &fakeNetwork{handler: body(aaplDaily)}
			_, err := newTestSource(net).FetchSeries(context.Background(), tc.query)
			if got := helpers.Classify(err); got != tc.kind {
				t.Fatalf("expected %s, got %s (%v)", tc.kind, got, err)
			}
			if net.calls.Load() != 0 {
				t.Error("no request should be sent for rejected input")
			}
		})
	}
}

// Every period/interval pair either yields an ordered series or a classified error.
func TestFetchSeries_AllCombinations(t *testing.T) {
	shortRanges := map[string]bool{"1d": true, "5d": true, "1mo": true}
	net := &fakeNetwork{handler: func(_ string, p map[string]string) ([]byte, error) {
		iv, _ := models.ParseInterval(p["interval"])
		if iv.Intraday() && !shortRanges[p["range"]] {
			env := fmt.Sprintf(`{"chart":{"result":null,"error":{"code":"Unprocessable Entity","description":"%s data not available for range %s"}}}`, p["interval"], p["range"])
			return nil, helpers.NewNetworkError(http.StatusUnprocessableEntity, []byte(env), nil)
		}
		return []byte(aaplDaily), nil
	}}
	src := newTestSource(net)

	for _, p := range models.AllPeriods() {
		for _, iv := range models.AllIntervals() {
			series, err := src.FetchSeries(context.Background(), models.NewQuerySpec("AAPL", p, iv))
			if err != nil {
				if helpers.Classify(err) != helpers.KindDataSource {
					t.Errorf("%s/%s: unexpected error kind %v", p, iv, err)
				}
				if !strings.Contains(err.Error(), "data not available") {
					t.Errorf("%s/%s: provider description lost: %v", p, iv, err)
				}
				continue
			}
			assertAscending(t, series)
		}
	}
}

func TestExchangeLocation_FallsBackToOffset(t *testing.T) {
	loc := exchangeLocation("Not/AZone", "XYZ", 3600)
	if loc.String() != "XYZ" {
		t.Errorf("expected fixed zone XYZ, got %s", loc)
	}
	if _, off := time.Unix(0, 0).In(loc).Zone(); off != 3600 {
		t.Errorf("expected offset 3600, got %d", off)
	}
}
