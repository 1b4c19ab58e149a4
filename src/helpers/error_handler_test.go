package helpers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"sp500-dashboard/src/logger"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"validation", NewValidationError("unknown period %q", "2w"), KindValidation},
		{"empty", NewEmptyResultError("AAPL returned no rows"), KindEmpty},
		{"source", NewDataSourceError("yahoo", errors.New("boom")), KindDataSource},
		{"network", NewNetworkError(503, nil, nil), KindDataSource},
		{"wrapped source", fmt.Errorf("query: %w", NewDataSourceError("yahoo", nil)), KindDataSource},
		{"source wrapping network", NewDataSourceError("yahoo", NewNetworkError(404, nil, nil)), KindDataSource},
		{"validation beats outer source", NewDataSourceError("yahoo", NewValidationError("bad")), KindValidation},
		{"plain", errors.New("plain"), KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	if HTTPStatus(KindValidation) != http.StatusBadRequest {
		t.Error("validation should be 400")
	}
	if HTTPStatus(KindEmpty) != http.StatusNotFound {
		t.Error("no data should be 404")
	}
	if HTTPStatus(KindDataSource) != http.StatusBadGateway {
		t.Error("data source should be 502")
	}
	if HTTPStatus(KindInternal) != http.StatusInternalServerError {
		t.Error("internal should be 500")
	}
}

func TestDashboardError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDataSourceError("reference page unreachable", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "reference page unreachable: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestUserMessage(t *testing.T) {
	if msg := UserMessage(NewEmptyResultError("ZZZZZNOPE returned no rows")); !strings.HasPrefix(msg, "No data") {
		t.Errorf("unexpected message %q", msg)
	}
	if UserMessage(nil) != "" {
		t.Error("nil error should have empty message")
	}
}

func TestErrorHandler_CountsOnlyFailures(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLogger(nil, "test")
	l.SetOutput(&buf)
	h := NewErrorHandler(l)

	h.Handle(nil, "noop")
	h.Handle(NewEmptyResultError("nothing"), "query")
	h.Handle(NewValidationError("bad"), "query")
	if h.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %d", h.ErrorCount())
	}

	if kind := h.Handle(NewDataSourceError("down", nil), "query"); kind != KindDataSource {
		t.Errorf("unexpected kind %q", kind)
	}
	h.Handle(errors.New("bug"), "render")
	if h.ErrorCount() != 2 {
		t.Errorf("expected 2 errors, got %d", h.ErrorCount())
	}
	if !strings.Contains(buf.String(), "ERROR: Error in render: bug") {
		t.Errorf("missing error log in %q", buf.String())
	}
}
