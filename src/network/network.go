package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"
)

// maxBodyBytes bounds how much of a response is read into memory.
const maxBodyBytes = 32 << 20

type HTTPNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	mu     sync.RWMutex
	client *http.Client
}

// -----------------------------------------------------------------------------

func NewHTTPNetworkManager(cfg *models.MConfig, log *logger.Logger) *HTTPNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &HTTPNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *HTTPNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// rotateProxy switches the client used by later requests. The failed
// request itself is not repeated.
func (nm *HTTPNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	client := nm.createClient()

	nm.mu.Lock()
	nm.client = client
	nm.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs one GET request. Non-200 responses come back as *helpers.NetworkError
// with the body attached so callers can decode provider error envelopes.
func (nm *HTTPNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", urlStr, err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "*/*")

	nm.mu.RLock()
	client := nm.client
	nm.mu.RUnlock()

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		nm.Logger.Warning("GET %s failed: %v", reqURL.Host+reqURL.Path, err)
		return nil, helpers.NewNetworkError(0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, helpers.NewNetworkError(resp.StatusCode, nil, err)
	}

	nm.Logger.Debug("GET %s -> %d (%d bytes, %s)", reqURL.Host+reqURL.Path, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		nm.Logger.Warning("Request blocked (%d). Rotating proxy.", resp.StatusCode)
		nm.rotateProxy()
	}

	if resp.StatusCode != http.StatusOK {
		return nil, helpers.NewNetworkError(resp.StatusCode, body, nil)
	}

	return body, nil
}
