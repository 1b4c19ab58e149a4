package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"sp500-dashboard/src/dashboard"
	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Service   dashboard.Service
	Reference interfaces.IReferenceSource
	Errors    *helpers.ErrorHandler // optional, reported by /api/health

	engine     *gin.Engine
	httpServer *http.Server
	metrics    http.Handler

	// WebSocket sessions
	sessions   map[*Client]struct{}
	sessionsMu sync.RWMutex

	// Reference load failure shown as a banner
	referenceErr error
	stateMutex   sync.RWMutex

	now func() time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewDashboardServer wires routes. metrics may be nil, in which case /metrics is not served.
func NewDashboardServer(cfg *models.MConfig, svc dashboard.Service, ref interfaces.IReferenceSource, metrics http.Handler, l *logger.Logger) (*DashboardServer, error) {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &DashboardServer{
		Config:    cfg,
		Logger:    l,
		Service:   svc,
		Reference: ref,
		engine:    gin.New(),
		metrics:   metrics,
		sessions:  make(map[*Client]struct{}),
		now:       time.Now,
	}

	s.engine.Use(gin.Recovery())
	if l.Enabled(logger.LevelDebug) {
		s.engine.Use(gin.Logger())
	}
	s.engine.Use(cors.New(s.corsConfig()))
	s.engine.SetHTMLTemplate(tmpl)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Upgrade", "Connection"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.Config.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.Config.AllowedOrigins
	}
	return cfg
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Page
	s.engine.GET("/", s.getPage)

	// REST API endpoints
	api := s.engine.Group("/api")
	api.GET("/options", s.getOptions)
	api.GET("/reference", s.getReference)
	api.GET("/reference/export", s.exportReference)
	api.GET("/series", s.getSeries)
	api.GET("/export", s.exportSeries)
	api.GET("/history", s.getHistory)
	api.GET("/health", s.getHealth)

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics))
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mostly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// SetReferenceError records why the reference table is unavailable. nil clears it.
func (s *DashboardServer) SetReferenceError(err error) {
	s.stateMutex.Lock()
	s.referenceErr = err
	s.stateMutex.Unlock()
}

func (s *DashboardServer) referenceBanner() string {
	if _, ok := s.Reference.Cached(); ok {
		return ""
	}
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	if s.referenceErr == nil {
		return ""
	}
	return "The S&P 500 reference list could not be loaded: " + s.referenceErr.Error()
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks until the server stops. It returns nil after Shutdown, including
// a Shutdown that happened before Start.
func (s *DashboardServer) Start() error {
	s.Logger.Info("Starting server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Shutdown stops accepting requests and closes every WebSocket session.
func (s *DashboardServer) Shutdown(ctx context.Context) error {
	s.closeSessions()
	return s.httpServer.Shutdown(ctx)
}
