package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spoolman/spoolman/broker"
	"spoolman/spoolman/config"
	"spoolman/spoolman/database"
	"spoolman/spoolman/middleware"
	"spoolman/spoolman/routes"
	"spoolman/spoolman/services"
	"spoolman/spoolman/utils/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logging.Configure(cfg.LogLevel, !cfg.IsProduction())

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// The NATS mirror is optional; without it events only reach websocket clients.
	var notifierOpts []broker.NotifierOption
	if cfg.NatsURL != "" {
		producer, err := broker.NewNatsProducer(cfg.NatsURL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, change events will not be mirrored")
		} else {
			defer producer.Close()
			notifierOpts = append(notifierOpts, broker.WithMirror(producer, cfg.NatsSubjectPrefix))
		}
	}

	notifier := broker.NewNotifier(notifierOpts...)
	defer notifier.Close()

	webSocketService := services.NewWebSocketService(notifier, services.WebSocketConfigFrom(cfg))
	defer webSocketService.Stop()

	printJobService := services.NewPrintJobService(notifier, cfg.NotifyCollectionTopic)
	spoolService := services.NewSpoolService(notifier)
	filamentService := services.NewFilamentService()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	api := router.Group("/api/v1")
	routes.RegisterHealthRoutes(api, db)
	routes.RegisterPrintJobRoutes(api, db, printJobService, webSocketService)
	routes.RegisterSpoolRoutes(api, db, spoolService, webSocketService)
	routes.RegisterFilamentRoutes(api, db, filamentService)
	routes.RegisterMetricsRoute(router)

	server := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown; the
	// deferred Stop closes them.
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shut down")
	}
}
