package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"sp500-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// DataSourceError: reference page or provider unreachable or unparseable.
type DataSourceError struct{ DashboardError }

// EmptyResultError: a valid request that returned zero rows.
type EmptyResultError struct{ DashboardError }

// ValidationError: input outside the accepted enumerations or limits.
type ValidationError struct{ DashboardError }

// NetworkError carries the HTTP status and body of a failed request.
type NetworkError struct {
	DashboardError
	StatusCode int
	Body       []byte
}

// -----------------------------------------------------------------------------

func NewDataSourceError(message string, cause error) error {
	return &DataSourceError{DashboardError{Message: message, Cause: cause}}
}

func NewEmptyResultError(message string) error {
	return &EmptyResultError{DashboardError{Message: message}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewNetworkError(statusCode int, body []byte, cause error) error {
	msg := "request failed"
	if statusCode != 0 {
		msg = fmt.Sprintf("bad status: %d", statusCode)
	}
	return &NetworkError{
		DashboardError: DashboardError{Message: msg, Cause: cause},
		StatusCode:     statusCode,
		Body:           body,
	}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindEmpty      ErrorKind = "no_data"
	KindDataSource ErrorKind = "data_source"
	KindInternal   ErrorKind = "internal"
)

// Classify reports the first kind found in the chain, checked in priority
// order: validation, then empty result, then data source or network.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		validation *ValidationError
		empty      *EmptyResultError
		source     *DataSourceError
		network    *NetworkError
	)
	switch {
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &empty):
		return KindEmpty
	case errors.As(err, &source), errors.As(err, &network):
		return KindDataSource
	default:
		return KindInternal
	}
}

// HTTPStatus maps an error kind to the JSON API response code.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindNone:
		return http.StatusOK
	case KindValidation:
		return http.StatusBadRequest
	case KindEmpty:
		return http.StatusNotFound
	case KindDataSource:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage is the text shown to the user for a failed request.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindValidation:
		return "Invalid input: " + err.Error()
	case KindEmpty:
		return "No data: " + err.Error()
	case KindDataSource:
		return "Data source unavailable: " + err.Error()
	default:
		return "Unexpected error: " + err.Error()
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(l *logger.Logger) *ErrorHandler {
	if l == nil {
		l = logger.NewLogger(nil, "ErrorHandler")
	}
	return &ErrorHandler{Logger: l}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int64 {
	return e.errorCount.Load()
}

// -----------------------------------------------------------------------------

// Handle logs err at a level matching its kind and returns the kind.
// Empty results and bad input are expected outcomes, not failures.
func (e *ErrorHandler) Handle(err error, context string) ErrorKind {
	kind := Classify(err)
	switch kind {
	case KindNone:
	case KindValidation, KindEmpty:
		e.Logger.Info("%s: %v", context, err)
	case KindDataSource:
		e.errorCount.Add(1)
		e.Logger.Warning("%s: %v", context, err)
	default:
		e.errorCount.Add(1)
		e.Logger.Error("Error in %s: %v", context, err)
	}
	return kind
}
