package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evida/coaching-pipeline/internal/api/router"
	appconfig "github.com/evida/coaching-pipeline/internal/config"
	"github.com/evida/coaching-pipeline/internal/http/handlers"
	"github.com/evida/coaching-pipeline/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting webhook stub server", "port", cfg.Port)

	// The stub endpoint never invokes the pipeline, so no pipeline
	// components (and no credentials) are constructed here.
	webhookHandler := handlers.NewMeetingWebhookHandler(cfg.MeetingProviderWebhookSecret, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		WebhookHandler: webhookHandler,
		MetricsHandler: promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
