package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

func newTestManager() *HTTPNetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5, UserAgent: "test-agent"}}
	l := logger.NewLogger(nil, "test")
	l.SetOutput(io.Discard)
	return NewHTTPNetworkManager(cfg, l)
}

func TestGet_SendsParamsAndUserAgent(t *testing.T) {
	var gotUA, gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestManager().Get(context.Background(), srv.URL+"/chart", map[string]string{"range": "1mo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("unexpected body %q", body)
	}
	if gotUA != "test-agent" {
		t.Errorf("unexpected user agent %q", gotUA)
	}
	if gotRange != "1mo" {
		t.Errorf("unexpected range %q", gotRange)
	}
}

func TestGet_NonOKReturnsNetworkErrorWithBody(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null}}`))
	}))
	defer srv.Close()

	_, err := newTestManager().Get(context.Background(), srv.URL, nil)
	var netErr *helpers.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Errorf("unexpected status %d", netErr.StatusCode)
	}
	if string(netErr.Body) != `{"chart":{"result":null}}` {
		t.Errorf("unexpected body %q", netErr.Body)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestManager().Get(ctx, srv.URL, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
