package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/assist"
	"github.com/askledger/askledger/internal/config"
	dbRedis "github.com/askledger/askledger/internal/db/redis"
	"github.com/askledger/askledger/internal/executor"
	"github.com/askledger/askledger/internal/loader"
	logpkg "github.com/askledger/askledger/internal/logger"
	"github.com/askledger/askledger/internal/metrics"
	"github.com/askledger/askledger/internal/parser"
	"github.com/askledger/askledger/internal/repository/anscache"
	"github.com/askledger/askledger/internal/store"
	chiTransport "github.com/askledger/askledger/internal/transport/chi"
	openaiTransport "github.com/askledger/askledger/internal/transport/openai"
	"github.com/askledger/askledger/internal/usecase/ask"
	"github.com/askledger/askledger/internal/version"
)

func main() {
	question := flag.String("q", "", "answer a single question and exit")
	flag.Parse()

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

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

	logger.Info("Starting askledger",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("invoices_path", cfg.Data.InvoicesPath),
	)

	records, err := loader.Invoices(cfg.Data.InvoicesPath)
	if err != nil {
		logger.Fatal("Failed to load invoices", zap.Error(err))
	}

	invoices := store.New(records, store.WithLogger(logger))
	logger.Info("Invoice store ready",
		zap.Int("invoices", invoices.Len()),
		zap.Int("known_vendors", len(invoices.KnownVendors())),
	)

	metrics.RegisterQueryMetrics()

	// Composition root: parsers -> executor -> ask service -> cache
	patterns := parser.New()

	var classifier assist.Classifier
	if cfg.Classifier.APIKey != "" {
		classifier = openaiTransport.NewClassifier(&openaiTransport.Config{
			APIKey:     cfg.Classifier.APIKey,
			BaseURL:    cfg.Classifier.BaseURL,
			Model:      cfg.Classifier.Model,
			Timeout:    time.Duration(cfg.Classifier.TimeoutSec) * time.Second,
			MaxRetries: cfg.Classifier.MaxRetries,
			Logger:     logger,
		})
		logger.Info("Classifier enabled", zap.String("model", cfg.Classifier.Model))
	} else {
		logger.Info("Classifier disabled, keyword fallback only")
	}
	assisted := assist.New(classifier, logger)

	exec := executor.New(invoices, logger)
	service := ask.New(patterns, assisted, exec, invoices, logger)

	var asker chiTransport.Asker = service
	if cfg.Cache.Enabled {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer kv.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := kv.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}

		asker = anscache.New(service, kv,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.AnswerCacheTotal, logger)
		logger.Info("Answer cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	if *question != "" {
		answerOnce(asker, *question, logger)
		return
	}

	serve(cfg, asker, invoices, logger)
}

// answerOnce handles the -q one-shot mode: print the answer, exit.
func answerOnce(asker chiTransport.Asker, question string, logger *zap.Logger) {
	answer, err := asker.Ask(context.Background(), question)
	if err != nil {
		logger.Error("Failed to answer question", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(answer.Text)
}

func serve(cfg config.Config, asker chiTransport.Asker, invoices *store.Store, logger *zap.Logger) {
	server := chiTransport.NewServer(asker, invoices, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
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

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

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
