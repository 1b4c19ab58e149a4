package dashboard

import (
	"context"
	"time"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

// loggingMiddleware wraps Service and logs request information to the provided logger
type loggingMiddleware struct {
	logger *logger.Logger
	svc    Service
}

func (s *loggingMiddleware) Reference(ctx context.Context) (table *models.MReferenceTable, err error) {
	defer func(begin time.Time) {
		s.log("Reference", "", err, time.Since(begin))
	}(time.Now())
	return s.svc.Reference(ctx)
}

func (s *loggingMiddleware) Query(ctx context.Context, query models.MQuerySpec) (result *models.MQueryResult, err error) {
	defer func(begin time.Time) {
		s.log("Query", query.String(), err, time.Since(begin))
	}(time.Now())
	return s.svc.Query(ctx, query)
}

func (s *loggingMiddleware) History(ctx context.Context, limit int) (records []models.MQueryRecord, err error) {
	defer func(begin time.Time) {
		s.log("History", "", err, time.Since(begin))
	}(time.Now())
	return s.svc.History(ctx, limit)
}

func (s *loggingMiddleware) log(method, request string, err error, elapsed time.Duration) {
	switch helpers.Classify(err) {
	case helpers.KindNone:
		s.logger.Debug("method=%s request=%s elapsed=%s", method, request, elapsed)
	case helpers.KindInternal:
		s.logger.Error("method=%s request=%s err=%v elapsed=%s", method, request, err, elapsed)
	default:
		s.logger.Info("method=%s request=%s err=%v elapsed=%s", method, request, err, elapsed)
	}
}

// NewLoggingMiddleware ...
func NewLoggingMiddleware(l *logger.Logger, svc Service) Service {
	return &loggingMiddleware{
		logger: l,
		svc:    svc,
	}
}
