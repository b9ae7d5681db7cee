package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/salonsys/salon-admin/internal/config"
	"github.com/salonsys/salon-admin/internal/db"
	"github.com/salonsys/salon-admin/internal/es"
	"github.com/salonsys/salon-admin/internal/handlers"
	"github.com/salonsys/salon-admin/internal/logging"
	authmw "github.com/salonsys/salon-admin/internal/middleware/auth"
	"github.com/salonsys/salon-admin/internal/mykafka"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/service/search"
	"github.com/salonsys/salon-admin/internal/storage"
	"github.com/salonsys/salon-admin/internal/token"
	httpserver "github.com/salonsys/salon-admin/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	gdb, err := db.Open(context.Background(), cfg.DSN())
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	store := repo.New(gdb)
	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	gate := authmw.NewGate(tokens, store)

	var producer *mykafka.Producer
	if cfg.KafkaAddr != "" {
		producer = mykafka.NewProducer([]string{cfg.KafkaAddr})
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var clientIndex *search.Index
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch error: %v", err)
		}
		clientIndex = search.NewIndex(esClient, "clients")
	} else {
		logger.Warn("ES_URL not set, client search served from the store")
	}

	photos, err := storage.NewPhotoStore(cfg.PhotoDir)
	if err != nil {
		log.Fatalf("photo storage error: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:      &handlers.AuthHandler{Repo: store, Tokens: tokens, Producer: producer},
		ClientHandler:    &handlers.ClientHandler{Repo: store, Producer: producer, Photos: photos, Search: clientIndex},
		ProcedureHandler: &handlers.ProcedureHandler{Repo: store, Producer: producer},
		UserHandler:      &handlers.UserHandler{Repo: store},
		Gate:             gate,
		PhotoDir:         cfg.PhotoDir,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
