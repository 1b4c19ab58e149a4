package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"sp500-dashboard/src/analysis"
	"sp500-dashboard/src/dashboard"
	"sp500-dashboard/src/export"
	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/models"
	"sp500-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Static text
// -----------------------------------------------------------------------------

const (
	pageTitle          = "Stock Prices for S&P 500"
	pageDescription    = "This app retrieves the list of S&P 500 companies by scraping Wikipedia, then queries Yahoo Finance for related stock information. Results are displayed below as a dataset and as a graph. The datasets can be downloaded for personal use."
	pageUsage          = "Use the left sidebar to enter a ticker symbol, pick a period and an interval, then press Search. Ticker symbols of the S&P 500 are listed by sector at the bottom of the page."
	emptySymbolMessage = "Please enter a ticker symbol."
	pageFooter         = "Built as a showcase of web scraping, market data retrieval and visualization."

	chartWidth  = 900
	chartHeight = 420
)

var pageLibraries = []string{"gin", "golang.org/x/net/html", "Yahoo Finance chart API", "encoding/csv"}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"pct": func(f float64) string {
		return fmt.Sprintf("%+.2f%%", f*100)
	},
	"price": func(f float64) string {
		return fmt.Sprintf("%.2f", f)
	},
}

// -----------------------------------------------------------------------------

type option struct {
	Value    string
	Selected bool
}

type sectorView struct {
	Name    string
	Entries []models.MReferenceEntry
}

// pageView is everything index.html renders.
type pageView struct {
	Title       string
	Description string
	Usage       string
	Libraries   []string
	Footer      string

	Symbol          string
	MaxSymbolLength int
	Periods         []option
	Intervals       []option

	Banner  string
	Market  models.MMarketStatus
	Sectors []sectorView

	Submitted    bool
	Result       *models.MQueryResult
	Summary      models.MSeriesSummary
	Columns      []string
	Rows         [][]string
	Chart        *Chart
	DownloadURL  template.URL
	DownloadName string
	NoData       string
	Error        string
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) newPageView(symbol string, period models.Period, interval models.Interval) *pageView {
	v := &pageView{
		Title:           pageTitle,
		Description:     pageDescription,
		Usage:           pageUsage,
		Libraries:       pageLibraries,
		Footer:          pageFooter,
		Symbol:          symbol,
		MaxSymbolLength: s.Config.Provider.MaxSymbolLength,
		Banner:          s.referenceBanner(),
		Market:          utils.GetCalendar(symbol).Status(s.now()),
	}

	for _, p := range models.AllPeriods() {
		v.Periods = append(v.Periods, option{Value: p.String(), Selected: p == period})
	}
	for _, i := range models.AllIntervals() {
		v.Intervals = append(v.Intervals, option{Value: i.String(), Selected: i == interval})
	}

	if table, ok := s.Reference.Cached(); ok {
		for _, sector := range table.Sectors() {
			v.Sectors = append(v.Sectors, sectorView{Name: sector, Entries: table.BySector(sector)})
		}
	}
	return v
}

// -----------------------------------------------------------------------------

// getPage renders the dashboard. Every outcome, including failures, is a 200
// page with a message, so the sidebar stays usable.
func (s *DashboardServer) getPage(c *gin.Context) {
	params := c.Request.URL.Query()
	submitted := params.Has("symbol")

	period, interval := models.DefaultPeriod, models.DefaultInterval
	query, parseErr := dashboard.ParseQuery(params.Get("symbol"), params.Get("period"), params.Get("interval"))
	if parseErr == nil {
		period, interval = query.Period, query.Interval
	}

	view := s.newPageView(query.Symbol, period, interval)
	if query.Symbol == "" {
		view.Symbol = params.Get("symbol")
	}
	view.Submitted = submitted

	switch {
	case !submitted:
	case parseErr == nil && query.Symbol == "":
		view.Error = emptySymbolMessage
	default:
		err := parseErr
		var res *models.MQueryResult
		if err == nil {
			res, err = s.Service.Query(c.Request.Context(), query)
		}
		if err != nil {
			s.renderError(view, err)
		} else {
			s.renderResult(view, res)
		}
	}

	c.HTML(http.StatusOK, "index.html", view)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) renderResult(view *pageView, res *models.MQueryResult) {
	view.Result = res
	view.Columns = res.Series.Header()
	view.Rows = res.Series.Records()
	view.Summary = analysis.Summarize(res.Series)
	view.Chart = BuildChart(res.Series.Closing(), chartWidth, chartHeight)

	name := export.FileName(res.Query.Symbol, res.Query.Period, res.Query.Interval)
	artifact, err := export.ToDownloadableCSV(name, res.Series)
	if err != nil {
		s.Logger.Error("Failed to build CSV for %s: %v", res.Query, err)
		return
	}
	// data: URLs are not trusted by html/template; this one is built from our own bytes
	view.DownloadURL = template.URL(artifact.DataURI())
	view.DownloadName = artifact.Filename
}

func (s *DashboardServer) renderError(view *pageView, err error) {
	if helpers.Classify(err) == helpers.KindEmpty {
		view.NoData = fmt.Sprintf("No data was returned for %q with the selected period and interval.", view.Symbol)
		return
	}
	view.Error = helpers.UserMessage(err)
}
