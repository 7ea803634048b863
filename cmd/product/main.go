package main

import (
	"context"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductStore/internal/config"
	"ProductStore/internal/product"
	"ProductStore/pkg/kit"
)

const service = "product"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("load config: %v", err)
		os.Exit(1)
	}

	logger := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded", zap.Stringer("config", cfg))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &product.Server{Store: product.NewMemStore(), Log: logger}
	h := product.NewHandler(s, product.HTTPDeps{
		Log:            logger,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	opts := kit.ServerOptions{
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ShutdownTimeout:   cfg.HTTPServer.Timeout.Shutdown,
	}
	if err := kit.RunHTTPServer(context.Background(), opts, h, logger); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
	logger.Info("http server stopped")
}
