package dashboard

import (
	"context"
	"fmt"
	"time"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

// Service is what the presentation layer calls for every request.
type Service interface {
	Reference(ctx context.Context) (*models.MReferenceTable, error)
	Query(ctx context.Context, query models.MQuerySpec) (*models.MQueryResult, error)
	History(ctx context.Context, limit int) ([]models.MQueryRecord, error)
}

type service struct {
	reference interfaces.IReferenceSource
	source    interfaces.IDataSource
	recorder  interfaces.IQueryRecorder
	errors    *helpers.ErrorHandler
	logger    *logger.Logger
	now       func() time.Time
}

// -----------------------------------------------------------------------------

// NewService builds the query service. errs may be shared with other readers of
// its failure count; nil gets a private handler.
func NewService(ref interfaces.IReferenceSource, src interfaces.IDataSource, rec interfaces.IQueryRecorder, errs *helpers.ErrorHandler, l *logger.Logger) Service {
	if errs == nil {
		errs = helpers.NewErrorHandler(l.Named("ErrorHandler"))
	}
	return &service{
		reference: ref,
		source:    src,
		recorder:  rec,
		errors:    errs,
		logger:    l,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *service) Reference(ctx context.Context) (*models.MReferenceTable, error) {
	return s.reference.Load(ctx)
}

// -----------------------------------------------------------------------------

// Query fetches one series. A valid request with no rows is an EmptyResultError
// so callers can show "no data" rather than an empty table.
func (s *service) Query(ctx context.Context, query models.MQuerySpec) (*models.MQueryResult, error) {
	series, err := s.source.FetchSeries(ctx, query)
	if err == nil && series.Empty() {
		err = helpers.NewEmptyResultError(fmt.Sprintf("%s returned no rows for period %s and interval %s", query.Symbol, query.Period, query.Interval))
	}

	s.record(ctx, query, series, err)

	if err != nil {
		s.errors.Handle(err, fmt.Sprintf("%s query %s", s.source.Name(), query))
		return nil, err
	}

	result := &models.MQueryResult{
		Query:     query,
		Series:    series,
		FetchedAt: s.now().UTC(),
	}
	if table, ok := s.reference.Cached(); ok {
		if entry, found := table.Lookup(query.Symbol); found {
			result.Entry = &entry
		}
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (s *service) History(ctx context.Context, limit int) ([]models.MQueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.recorder.RecentQueries(ctx, limit)
}

// -----------------------------------------------------------------------------

// record writes the audit row. Storage failures never fail the query.
func (s *service) record(ctx context.Context, query models.MQuerySpec, series *models.MPriceSeries, err error) {
	rec := models.MQueryRecord{
		Symbol:    query.Symbol,
		Period:    query.Period.String(),
		Interval:  query.Interval.String(),
		Rows:      series.Len(),
		Outcome:   outcome(err),
		CreatedAt: s.now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if recErr := s.recorder.RecordQuery(ctx, rec); recErr != nil {
		s.logger.Warning("Failed to record query %s: %v", query, recErr)
	}
}

func outcome(err error) string {
	switch helpers.Classify(err) {
	case helpers.KindNone:
		return models.OutcomeOK
	case helpers.KindEmpty:
		return models.OutcomeNoData
	case helpers.KindValidation:
		return models.OutcomeInvalid
	case helpers.KindDataSource:
		return models.OutcomeSourceError
	default:
		return models.OutcomeError
	}
}
