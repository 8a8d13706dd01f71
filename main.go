package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/analytics"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/config"
	"github.com/mauv0809/touchline/internal/database"
	server "github.com/mauv0809/touchline/internal/http"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/notifier/slack"
	"github.com/mauv0809/touchline/internal/procedures"
	"github.com/mauv0809/touchline/internal/processor"
	"github.com/mauv0809/touchline/internal/pubsub"
)

func main() {
	clock := clockwork.NewRealClock()
	startTime := clock.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	ctx := context.Background()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", clock.Since(startTime).Milliseconds())
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	var events pubsub.PubSubClient = pubsub.NewDisabled()
	if cfg.ProjectID != "" {
		client, closePubSub, err := pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer closePubSub()
		events = client
	} else {
		log.Warn("GCP_PROJECT not set, events will only be logged")
	}

	caller := procedures.Unavailable()
	if cfg.Analytics.DatabaseURL != "" {
		pg, closePool, err := procedures.New(ctx, cfg.Analytics.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to analytics database: %s", err)
		}
		defer closePool()
		caller = pg
	} else {
		log.Warn("ANALYTICS_DATABASE_URL not set, analytics endpoints are disabled")
	}

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	clubStore := club.New(db, clock)
	sheets := matchsheet.NewStore(db, clock)
	workflow := matchsheet.NewService(clubStore, sheets, events, metricsSvc, clock)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	s := server.NewServer(server.Deps{
		Store:          clubStore,
		Sheets:         sheets,
		Workflow:       workflow,
		Importer:       importer.New(importer.NewStore(clubStore, sheets), metricsSvc, clock),
		Analytics:      analytics.New(caller, metricsSvc, clock),
		Notifier:       notifier,
		Processor:      processor.New(workflow, clubStore, notifier, events),
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
	})

	// --- Record startup time ---
	startupDuration := clock.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
