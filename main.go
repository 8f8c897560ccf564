package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ytdigest/analytics"
	"ytdigest/cache"
	"ytdigest/config"
	"ytdigest/digest"
	"ytdigest/handlers"
	"ytdigest/logger"
	"ytdigest/middleware"
	"ytdigest/retry"
	"ytdigest/summarize"
	"ytdigest/transcript"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	log, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}

	store, err := analytics.NewStore(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize analytics store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Error("Failed to close analytics store")
		}
	}()

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	responseCache := cache.New()
	responseCache.StartSweeper(sweepCtx, cfg.CacheSweepInterval)

	retryPolicy := retry.Policy{
		MaxRetries:        cfg.MaxRetries,
		InitialDelay:      cfg.InitialBackoff,
		BackoffMultiplier: cfg.BackoffMultiplier,
		MaxDelay:          cfg.MaxBackoff,
	}

	transcripts := transcript.NewService(nil, transcript.Config{
		FetchTimeout: cfg.FetchTimeout,
	})

	engine := summarize.NewEngine(summarize.Config{
		APIKey:          cfg.OpenAIAPIKey,
		FallbackAPIKey:  cfg.FallbackAPIKey,
		FallbackBaseURL: cfg.FallbackBaseURL,
		FallbackModel:   cfg.FallbackModel,
		Timeout:         cfg.ProviderTimeout,
		Retry:           retryPolicy,
	})

	service := digest.NewService(transcripts, engine, responseCache, store, digest.Config{
		DefaultLanguage:    cfg.DefaultLanguage,
		DefaultModel:       cfg.DefaultModel,
		MinTranscriptChars: cfg.MinTranscriptChars,
		CacheTTL:           cfg.CacheTTL,
		Retry:              retryPolicy,
	})

	router := mux.NewRouter()
	handlers.New(service, cfg.RequestTimeout).RegisterRoutes(router)

	handler := middleware.Chain(
		router,
		middleware.RequestID(),
		middleware.Logging(log),
		middleware.Recovery(log),
		middleware.RateLimit(cfg.RateLimit, cfg.RateLimitBurst),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.WithField("port", cfg.ServerPort).Info("Listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server shutdown failed")
	}
}
