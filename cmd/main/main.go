package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sp500-dashboard/src/config"
	"sp500-dashboard/src/dashboard"
	"sp500-dashboard/src/data_source/wikipedia"
	"sp500-dashboard/src/data_source/yahoo"
	"sp500-dashboard/src/helpers"
	"sp500-dashboard/src/interfaces"
	"sp500-dashboard/src/logger"
	"sp500-dashboard/src/network"
	"sp500-dashboard/src/server"
	"sp500-dashboard/src/storage"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "path to config file")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	flag.Parse()

	// 1. Load config: defaults, YAML, then DASHBOARD_* variables
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	// 2. Setup Components
	var netMgr interfaces.INetworkManager = network.NewHTTPNetworkManager(cfg.MConfig, appLogger.Named("Network"))
	reference := wikipedia.NewReferenceLoader(cfg.Reference, netMgr, appLogger.Named("Reference"))
	var source interfaces.IDataSource = yahoo.NewYahooFinanceSource(cfg.Provider, netMgr, appLogger.Named("Yahoo"))

	recorder, err := storage.NewQueryRecorder(cfg.Storage, appLogger.Named("Storage"))
	if err != nil {
		appLogger.Critical("Failed to init query history: %v", err)
	}
	defer recorder.Close()

	// 3. Service with logging and metrics
	errs := helpers.NewErrorHandler(appLogger.Named("ErrorHandler"))
	svc := dashboard.NewService(reference, source, recorder, errs, appLogger.Named("Dashboard"))
	svc = dashboard.NewLoggingMiddleware(appLogger.Named("Requests"), svc)
	svc = dashboard.NewInstrumentingMiddleware(
		kitprometheus.NewCounterFrom(prometheus.CounterOpts{
			Namespace: "sp500",
			Subsystem: "dashboard",
			Name:      "requests_total",
			Help:      "Number of dashboard requests received.",
		}, dashboard.MetricLabels),
		kitprometheus.NewSummaryFrom(prometheus.SummaryOpts{
			Namespace: "sp500",
			Subsystem: "dashboard",
			Name:      "request_duration_seconds",
			Help:      "Duration of dashboard requests in seconds.",
		}, dashboard.MetricLabels),
		svc,
	)

	srv, err := server.NewDashboardServer(cfg.MConfig, svc, reference, promhttp.Handler(), appLogger.Named("Server"))
	if err != nil {
		// return so the deferred recorder close still runs
		appLogger.Error("Failed to init server: %v", err)
		return
	}
	srv.Errors = errs

	// 4. Initial reference load; failure leaves the page usable with a banner
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loadCtx, cancelLoad := context.WithTimeout(ctx, time.Duration(cfg.Network.RequestTimeout)*time.Second)
	if table, err := reference.Load(loadCtx); err != nil {
		appLogger.Warning("Reference list unavailable: %v", err)
		srv.SetReferenceError(err)
	} else {
		appLogger.Info("Loaded %d constituents in %d sectors", table.Len(), len(table.Sectors()))
	}
	cancelLoad()

	// 5. Start Server
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down...")
	case err := <-errCh:
		if err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}

	// 6. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
	appLogger.Info("Stopped")
}
