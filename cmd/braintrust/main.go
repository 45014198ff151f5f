package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/community-brain/braintrust/internal/config"
	dbRedis "github.com/community-brain/braintrust/internal/db/redis"
	"github.com/community-brain/braintrust/internal/indexer"
	logpkg "github.com/community-brain/braintrust/internal/logger"
	"github.com/community-brain/braintrust/internal/metrics"
	indexrepo "github.com/community-brain/braintrust/internal/repository/index"
	chiTransport "github.com/community-brain/braintrust/internal/transport/chi"
	"github.com/community-brain/braintrust/internal/transport/community"
	openaiTransport "github.com/community-brain/braintrust/internal/transport/openai"
	answeruc "github.com/community-brain/braintrust/internal/usecase/answer"
	expertsuc "github.com/community-brain/braintrust/internal/usecase/experts"
	healthuc "github.com/community-brain/braintrust/internal/usecase/health"
	searchuc "github.com/community-brain/braintrust/internal/usecase/search"
	summarizeuc "github.com/community-brain/braintrust/internal/usecase/summarize"
	"github.com/community-brain/braintrust/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting braintrust API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generator.APIKey,
		BaseURL:     cfg.Generator.BaseURL,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Logger:      logger,
	})

	contentStore := community.NewClient(&community.Config{
		BaseURL: cfg.Community.BaseURL,
		APIKey:  cfg.Community.APIKey,
		Timeout: time.Duration(cfg.Community.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	defer contentStore.Close()

	index := indexrepo.New(store, indexrepo.Config{
		VectorDim:       cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	// Indexing consumer. A failed start degrades health but does not block
	// answering, the HTTP API serves with a stale index.
	consumer := indexer.NewConsumer(
		indexer.Config{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
			Topic:   cfg.Kafka.Topic,
		},
		indexer.NewHandler(contentStore, embedder, index, logger),
		index, nil, logger,
	)
	if err := consumer.Start(ctx); err != nil {
		logger.Error("Indexing consumer failed to start, serving without it", zap.Error(err))
	}

	answerSvc := answeruc.New(embedder, index, contentStore, generator, logger)
	searchSvc := searchuc.New(embedder, index)
	summarizeSvc := summarizeuc.New(contentStore, generator, logger)
	expertsSvc := expertsuc.New(contentStore)
	healthSvc := healthuc.New(store, embedder, consumer)

	server := chiTransport.NewServer(answerSvc, searchSvc, summarizeSvc, expertsSvc, healthSvc, logger)
	handler := server.Router(cfg.Auth.APIKeys, wideEventMiddleware(logger))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	// Consumer first so no message is half-processed when clients close.
	if consumer.Running() {
		if err := consumer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping indexing consumer", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
