package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/go-kit/kit/metrics"

	"sp500-dashboard/src/models"
)

// MetricLabels are the label names the request metrics are declared with.
var MetricLabels = []string{"method", "error"}

// instrumentingMiddleware wraps Service and enables request metrics
type instrumentingMiddleware struct {
	reqCount    metrics.Counter
	reqDuration metrics.Histogram
	svc         Service
}

func (s *instrumentingMiddleware) Reference(ctx context.Context) (table *models.MReferenceTable, err error) {
	defer func(begin time.Time) { s.recordMetrics("Reference", begin, err) }(time.Now())
	return s.svc.Reference(ctx)
}

func (s *instrumentingMiddleware) Query(ctx context.Context, query models.MQuerySpec) (result *models.MQueryResult, err error) {
	defer func(begin time.Time) { s.recordMetrics("Query", begin, err) }(time.Now())
	return s.svc.Query(ctx, query)
}

func (s *instrumentingMiddleware) History(ctx context.Context, limit int) (records []models.MQueryRecord, err error) {
	defer func(begin time.Time) { s.recordMetrics("History", begin, err) }(time.Now())
	return s.svc.History(ctx, limit)
}

func (s *instrumentingMiddleware) recordMetrics(method string, startTime time.Time, err error) {
	labels := []string{
		"method", method,
		"error", strconv.FormatBool(err != nil),
	}
	s.reqCount.With(labels...).Add(1)
	s.reqDuration.With(labels...).Observe(time.Since(startTime).Seconds())
}

// NewInstrumentingMiddleware ...
func NewInstrumentingMiddleware(reqCount metrics.Counter, reqDuration metrics.Histogram, svc Service) Service {
	return &instrumentingMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		svc:         svc,
	}
}
