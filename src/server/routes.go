package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sp500-dashboard/src/analysis"
	"sp500-dashboard/src/dashboard"
	"sp500-dashboard/src/export"
	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/models"
	"sp500-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	referenceFileName   = "sp500_constituents.csv"
)

// queryView is the wire form of a query; the enums travel as their tokens.
type queryView struct {
	Symbol   string `json:"symbol"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
}

func newQueryView(q models.MQuerySpec) queryView {
	return queryView{Symbol: q.Symbol, Period: q.Period.String(), Interval: q.Interval.String()}
}

type seriesResponse struct {
	Query     queryView               `json:"query"`
	Entry     *models.MReferenceEntry `json:"entry,omitempty"`
	Series    *models.MPriceSeries    `json:"series"`
	Closing   models.MClosingSeries   `json:"closing"`
	Summary   models.MSeriesSummary   `json:"summary"`
	FetchedAt time.Time               `json:"fetched_at"`
}

func newSeriesResponse(res *models.MQueryResult) seriesResponse {
	return seriesResponse{
		Query:     newQueryView(res.Query),
		Entry:     res.Entry,
		Series:    res.Series,
		Closing:   res.Series.Closing(),
		Summary:   analysis.Summarize(res.Series),
		FetchedAt: res.FetchedAt,
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getOptions(c *gin.Context) {
	periods := make([]string, 0)
	for _, p := range models.AllPeriods() {
		periods = append(periods, p.String())
	}
	intervals := make([]string, 0)
	for _, i := range models.AllIntervals() {
		intervals = append(intervals, i.String())
	}

	c.JSON(http.StatusOK, gin.H{
		"periods":           periods,
		"intervals":         intervals,
		"default_period":    models.DefaultPeriod.String(),
		"default_interval":  models.DefaultInterval.String(),
		"max_symbol_length": s.Config.Provider.MaxSymbolLength,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getReference(c *gin.Context) {
	table, err := s.Service.Reference(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.SetReferenceError(nil)

	if sector, ok := c.GetQuery("sector"); ok {
		entries := table.BySector(sector)
		if len(entries) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown sector %q", sector), "sectors": table.Sectors()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sector": sector, "entries": entries})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source":    table.Source,
		"loaded_at": table.LoadedAt,
		"columns":   table.Columns,
		"sectors":   table.Sectors(),
		"entries":   table.Entries,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) exportReference(c *gin.Context) {
	table, err := s.Service.Reference(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	artifact, err := export.ToDownloadableCSV(referenceFileName, table)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	sendAttachment(c, artifact)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSeries(c *gin.Context) {
	res, err := s.runQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSeriesResponse(res))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) exportSeries(c *gin.Context) {
	res, err := s.runQuery(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	name := export.FileName(res.Query.Symbol, res.Query.Period, res.Query.Interval)
	artifact, err := export.ToDownloadableCSV(name, res.Series)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	sendAttachment(c, artifact)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.abortWithError(c, helpers.NewValidationError("limit must be a positive integer, got %q", raw))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.Service.History(c.Request.Context(), limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": records})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	table, loaded := s.Reference.Cached()

	health := gin.H{
		"status":            "ok",
		"reference_loaded":  loaded,
		"reference_entries": table.Len(),
		"sessions":          s.SessionCount(),
		"market":            utils.GetCalendar("").Status(s.now()),
	}
	if s.Errors != nil {
		health["failed_queries"] = s.Errors.ErrorCount()
	}
	c.JSON(http.StatusOK, health)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func (s *DashboardServer) runQuery(c *gin.Context) (*models.MQueryResult, error) {
	q, err := dashboard.ParseQuery(c.Query("symbol"), c.Query("period"), c.Query("interval"))
	if err != nil {
		return nil, err
	}
	return s.Service.Query(c.Request.Context(), q)
}

// abortWithError maps the error kind to a status code and a user-facing message.
func (s *DashboardServer) abortWithError(c *gin.Context, err error) {
	kind := helpers.Classify(err)
	if kind == helpers.KindInternal {
		s.Logger.Error("Error in %s: %v", c.FullPath(), err)
	}
	c.AbortWithStatusJSON(helpers.HTTPStatus(kind), gin.H{
		"error": helpers.UserMessage(err),
		"kind":  kind,
	})
}

func sendAttachment(c *gin.Context, a *export.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
	c.Data(http.StatusOK, a.MediaType, a.Data)
}
