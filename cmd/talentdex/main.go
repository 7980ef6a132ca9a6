package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/talentdex/talentdex/internal/config"
	dbRedis "github.com/talentdex/talentdex/internal/db/redis"
	logpkg "github.com/talentdex/talentdex/internal/logger"
	"github.com/talentdex/talentdex/internal/metrics"
	candidaterepo "github.com/talentdex/talentdex/internal/repository/candidate"
	explanationrepo "github.com/talentdex/talentdex/internal/repository/explanation"
	jobrepo "github.com/talentdex/talentdex/internal/repository/job"
	pagerepo "github.com/talentdex/talentdex/internal/repository/page"
	runrepo "github.com/talentdex/talentdex/internal/repository/run"
	chiTransport "github.com/talentdex/talentdex/internal/transport/chi"
	openaiInfer "github.com/talentdex/talentdex/internal/transport/openai"
	compileuc "github.com/talentdex/talentdex/internal/usecase/compile"
	executeuc "github.com/talentdex/talentdex/internal/usecase/execute"
	fallbackuc "github.com/talentdex/talentdex/internal/usecase/fallback"
	healthuc "github.com/talentdex/talentdex/internal/usecase/health"
	pageuc "github.com/talentdex/talentdex/internal/usecase/page"
	rerankuc "github.com/talentdex/talentdex/internal/usecase/rerank"
	"github.com/talentdex/talentdex/internal/version"
)

// explanationTTL bounds how long per-candidate scoring explanations are kept.
const explanationTTL = 7 * 24 * time.Hour

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting talentdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Two inference clients: compilation wants structure, reranking wants
	// judgment, so they carry separate models and temperatures.
	compileLLM := openaiInfer.NewInferencer(&openaiInfer.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.CompileModel,
		Temperature: cfg.LLM.CompileTemperature,
		Purpose:     "compile",
		Logger:      logger,
	})
	rerankLLM := openaiInfer.NewInferencer(&openaiInfer.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.RerankModel,
		Temperature: cfg.LLM.RerankTemperature,
		Purpose:     "rerank",
		Logger:      logger,
	})
	logger.Info("Inference clients created",
		zap.String("compile_model", cfg.LLM.CompileModel),
		zap.String("rerank_model", cfg.LLM.RerankModel),
	)

	// Repositories
	prefix := cfg.Storage.KeyPrefix
	runRepo := runrepo.New(store, prefix)
	pageRepo := pagerepo.New(store, prefix)
	jobRepo := jobrepo.New(store, prefix)
	candidateRepo := candidaterepo.New(store, prefix)
	explanationRepo := explanationrepo.New(store, prefix, explanationTTL)

	// Use case services — composition root
	compileSvc := compileuc.New(compileLLM, cfg.Search.RefineRowCap, logger)
	executeSvc := executeuc.New(
		jobRepo, candidateRepo,
		time.Duration(cfg.Search.PollIntervalMs)*time.Millisecond,
		time.Duration(cfg.Search.ExecutionBudgetSec)*time.Second,
		logger,
	)
	fallbackSvc := fallbackuc.New(compileSvc, executeSvc, fallbackuc.Config{
		BatchSize:       cfg.Search.BatchSize,
		Tier2MinPool:    cfg.Search.Tier2MinPool,
		Tier3MinPool:    cfg.Search.Tier3MinPool,
		BroadLimitBoost: cfg.Search.BroadLimitBoost,
	}, logger)
	rerankSvc, err := rerankuc.New(rerankLLM, explanationRepo, cfg.Search.RerankWorkers, cfg.Search.ReviewCap, logger)
	if err != nil {
		logger.Fatal("Failed to create rerank service", zap.Error(err))
	}
	defer rerankSvc.Close()
	pageSvc := pageuc.New(runRepo, pageRepo, compileSvc, fallbackSvc, rerankSvc, pageuc.Config{
		PageSize:      cfg.Search.PageSize,
		BatchSize:     cfg.Search.BatchSize,
		ScoreSumFloor: cfg.Search.ScoreSumFloor,
	}, logger)
	healthSvc := healthuc.New(store, compileLLM)

	server := chiTransport.NewServer(pageSvc, explanationRepo, healthSvc, logger)
	handler := server.Routes(
		jsonRecoverer(logger),
		wideEventMiddleware(logger),
		chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys),
		metrics.Middleware(),
	)

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
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
