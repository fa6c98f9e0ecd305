// Command airport-ga4 serves Google Analytics 4 reports over Arrow Flight.
//
// Usage:
//
//	airport-ga4 -config airport-ga4.yaml
//
// Example configuration:
//
//	listen: ":50051"
//	metrics_listen: ":9090"
//	log_level: debug
//	property_id: "123456789"
//	credentials_file: /etc/airport-ga4/service-account.json
//	upstream_timeout: 30s
//	scope:
//	  dimension: hostName
//	  value: example.com
//	tokens:
//	  secret-token-a: tenant-a
//	scopes:
//	  tenant-a: a.example.com
//	default_scope_fallback: false
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	ga4 "github.com/hugr-lab/airport-ga4"
)

func main() {
	configPath := flag.String("config", "airport-ga4.yaml", "path to the YAML configuration file")
	flag.Parse()

	fileCfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(slog.Default(), "Failed to load config", err)
	}
	config, err := fileCfg.serverConfig()
	if err != nil {
		fatal(slog.Default(), "Invalid config", err)
	}
	logger := config.Logger

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	config.Registerer = registry

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpcServer := grpc.NewServer(ga4.ServerOptions(config)...)
	if _, err := ga4.NewServer(ctx, grpcServer, config); err != nil {
		fatal(logger, "Failed to register GA4 server", err)
	}

	if fileCfg.MetricsListen != "" {
		metricsServer := &http.Server{
			Addr:              fileCfg.MetricsListen,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
		defer metricsServer.Close()
		logger.Info("Metrics server listening", "address", fileCfg.MetricsListen)
	}

	lis, err := net.Listen("tcp", fileCfg.Listen)
	if err != nil {
		fatal(logger, "Failed to listen", err)
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		grpcServer.GracefulStop()
	}()

	logger.Info("GA4 Flight server listening",
		"address", fileCfg.Listen,
		"property", fileCfg.PropertyID,
	)
	if err := grpcServer.Serve(lis); err != nil {
		fatal(logger, "Failed to serve", err)
	}
	logger.Info("Server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
