package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/realdonpromillo/jaenus-book-of-shame/config"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/adapters/nominatim"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/adapters/storage"
	httpdelivery "github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http/controllers"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/delivery/http/middleware"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/repository/postgres"
	"github.com/realdonpromillo/jaenus-book-of-shame/internal/services"
)

const serviceTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	imageStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	geocoder := nominatim.NewClient(
		&http.Client{Timeout: cfg.GeocoderTimeout},
		cfg.GeocoderURL,
		cfg.GeocoderUserAgent,
	)

	eventRepo := postgres.NewEventRepository(db)
	eventService := services.NewEventService(eventRepo, geocoder, imageStore, serviceTimeout)

	eventController := controllers.NewEventController(logger, eventService)
	geocodeController := controllers.NewGeocodeController(logger, geocoder)

	router := httpdelivery.NewRouter(eventController, geocodeController, cfg.UploadDir, cfg.StaticDir)
	handler := middleware.CORS(cfg.AllowedOrigins,
		middleware.Metrics(
			middleware.Logging(logger, router),
		),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server terminated", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped cleanly")
}
