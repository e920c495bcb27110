package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"movie-service/internal/auth"
	"movie-service/internal/server"
	"movie-service/internal/store"
	"movie-service/pkg/config"
	"movie-service/pkg/database"
	"movie-service/pkg/logger"
	"movie-service/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.InitLogger(appConfig)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting movie-service", appConfig.LogFields()...)

	// Initialize Prometheus metrics
	metrics := prometheus.NewMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Open(&appConfig.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	movieStore := store.New(db,
		store.WithTracker(metrics),
		store.WithTitleMatch(appConfig.Movies.TitleMatch))

	inserted, err := movieStore.PopulateGenres(context.Background())
	if err != nil {
		log.Fatal("Failed to seed genres", zap.Error(err))
	}
	genres, err := movieStore.GetGenres(context.Background())
	if err != nil {
		log.Fatal("Failed to load genres", zap.Error(err))
	}
	metrics.SetGenres(len(genres))
	log.Info("Genres ready", zap.Int("inserted", inserted), zap.Int("total", len(genres)))

	gate := auth.NewGate(appConfig, log)

	srv := server.New(server.Deps{
		Config:  appConfig,
		Logger:  log,
		Store:   movieStore,
		Gate:    gate,
		Metrics: metrics,
	})
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := srv.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Echo.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
