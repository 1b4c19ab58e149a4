package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

type YahooFinanceSource struct {
	Config  models.MProviderConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager, l *logger.Logger) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  l,
	}
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

// FetchSeries requests OHLCV bars for the query. The symbol is passed through as
// typed; an unknown ticker is reported by the provider, not rejected here.
func (s *YahooFinanceSource) FetchSeries(ctx context.Context, query models.MQuerySpec) (*models.MPriceSeries, error) {
	if err := s.validate(query); err != nil {
		return nil, err
	}

	params := map[string]string{
		"range":                query.Period.String(),
		"interval":             query.Interval.String(),
		"includePrePost":       strconv.FormatBool(s.Config.IncludePrePost),
		"events":               "div,splits",
		"includeAdjustedClose": "true",
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", strings.TrimRight(s.Config.BaseURL, "/"), url.PathEscape(query.Symbol))

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		return nil, s.providerError(query, err)
	}

	return s.parseChartResponse(query, respBytes)
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) validate(query models.MQuerySpec) error {
	if !query.Period.Valid() {
		return helpers.NewValidationError("unsupported period %s", query.Period)
	}
	if !query.Interval.Valid() {
		return helpers.NewValidationError("unsupported interval %s", query.Interval)
	}
	if query.Symbol == "" {
		return helpers.NewDataSourceError("empty ticker symbol", nil)
	}
	if n := len([]rune(query.Symbol)); n > s.Config.MaxSymbolLength {
		return helpers.NewValidationError("ticker symbol %q is %d characters, limit is %d", query.Symbol, n, s.Config.MaxSymbolLength)
	}
	return nil
}

// -----------------------------------------------------------------------------

// providerError decodes the chart error envelope carried by non-200 responses.
func (s *YahooFinanceSource) providerError(query models.MQuerySpec, err error) error {
	var netErr *helpers.NetworkError
	if errors.As(err, &netErr) && len(netErr.Body) > 0 {
		var resp YahooChartResponse
		if json.Unmarshal(netErr.Body, &resp) == nil && resp.Chart.Error != nil {
			return helpers.NewDataSourceError(
				fmt.Sprintf("yahoo rejected %s", query),
				fmt.Errorf("%s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description),
			)
		}
	}
	return helpers.NewDataSourceError(fmt.Sprintf("yahoo request for %s failed", query), err)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string  `json:"currency"`
				Symbol               string  `json:"symbol"`
				ExchangeName         string  `json:"exchangeName"`
				InstrumentType       string  `json:"instrumentType"`
				Gmtoffset            int     `json:"gmtoffset"`
				Timezone             string  `json:"timezone"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				DataGranularity      string  `json:"dataGranularity"`
				Range                string  `json:"range"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`   // Use pointers to handle null
					Low    []*float64 `json:"low"`    // Use pointers to handle null
					Open   []*float64 `json:"open"`   // Use pointers to handle null
					Close  []*float64 `json:"close"`  // Use pointers to handle null
					Volume []*float64 `json:"volume"` // Use pointers to handle null
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(query models.MQuerySpec, data []byte) (*models.MPriceSeries, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewDataSourceError("yahoo response is not valid JSON", err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewDataSourceError(
			fmt.Sprintf("yahoo rejected %s", query),
			fmt.Errorf("%s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description),
		)
	}

	series := &models.MPriceSeries{
		Symbol:   query.Symbol,
		Period:   query.Period.String(),
		Interval: query.Interval.String(),
		Bars:     []models.MPriceBar{},
	}

	if len(resp.Chart.Result) == 0 {
		return series, nil
	}

	result := resp.Chart.Result[0]
	meta := result.Meta
	series.Currency = meta.Currency
	series.Exchange = meta.ExchangeName
	series.Timezone = meta.ExchangeTimezoneName

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		s.Logger.Info("No rows for %s", query)
		return series, nil
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)

	// 1. Validation: Alignment check
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Volume) != n {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("data alignment error for %s", query), nil)
	}

	var adjClose []*float64
	if s.Config.AutoAdjust && len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == n {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	loc := exchangeLocation(meta.ExchangeTimezoneName, meta.Timezone, meta.Gmtoffset)

	// 2. Build bars, dropping rows with null cells
	bars := make([]models.MPriceBar, 0, n)
	skipped := 0
	for i := 0; i < n; i++ {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			skipped++
			continue
		}

		bar := models.MPriceBar{
			Timestamp: time.Unix(result.Timestamp[i], 0).In(loc),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
		}
		if quote.Volume[i] != nil {
			bar.Volume = int64(*quote.Volume[i])
		}

		// 3. Split/dividend adjustment
		if adjClose != nil && adjClose[i] != nil && bar.Close != 0 {
			ratio := *adjClose[i] / bar.Close
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			bar.Close = *adjClose[i]
		}

		bars = append(bars, bar)
	}
	if skipped > 0 {
		s.Logger.Debug("Skipped %d null rows for %s", skipped, query)
	}

	// 4. Ascending, strictly increasing timestamps
	series.Bars = sortAndDedup(bars)

	if len(series.Bars) > 0 {
		first := series.Bars[0].Timestamp
		last := series.Bars[len(series.Bars)-1].Timestamp
		s.Logger.Info("Fetched %s: %d bars [%s -> %s]", query, len(series.Bars), first.Format(time.RFC3339), last.Format(time.RFC3339))
	}

	return series, nil
}

// -----------------------------------------------------------------------------

// sortAndDedup orders bars by time; for repeated timestamps the later row wins.
func sortAndDedup(bars []models.MPriceBar) []models.MPriceBar {
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(b.Timestamp) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// -----------------------------------------------------------------------------

func exchangeLocation(name, abbrev string, gmtoffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if abbrev == "" {
		abbrev = "UTC"
	}
	return time.FixedZone(abbrev, gmtoffset)
}
