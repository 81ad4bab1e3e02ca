// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"nil-matching/internal/acquisition"
	"nil-matching/internal/common/camunda"
	"nil-matching/internal/common/config"
	"nil-matching/internal/common/database"
	"nil-matching/internal/common/logger"
	"nil-matching/internal/common/metrics"
	"nil-matching/internal/common/observability"
	"nil-matching/internal/matching"
	"nil-matching/internal/qualitative"
	"nil-matching/pkg/registry"

	em "nil-matching/internal/workers/matching/enhance-match"
	pmf "nil-matching/internal/workers/matching/parse-match-filters"
	rc "nil-matching/internal/workers/matching/rank-candidates"
	sm "nil-matching/internal/workers/matching/score-match"
	sc "nil-matching/internal/workers/matching/search-candidates"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := registry.MustDefault().Check(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	obs := observability.New("worker-manager", log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Stores ---
	var clients *database.Clients
	err = retryWithBackoff(func() error {
		var err error
		clients, err = database.Connect(ctx, cfg.Database)
		return err
	}, 15, 2*time.Second, zapLog, "Store connection")
	if err != nil {
		zapLog.Fatal("stores failed after retries", zap.Error(err))
	}
	defer clients.Close()
	zapLog.Info("Stores connected",
		zap.Bool("postgres", clients.Postgres != nil),
		zap.Bool("redis", clients.Redis != nil),
		zap.Bool("elasticsearch", clients.Elasticsearch != nil),
	)

	// --- Matching engine ---
	var cache redis.Cmdable
	if clients.Redis != nil {
		cache = clients.Redis.Client
	}
	source, err := acquisition.NewSource(cfg.Acquisition, clients.Postgres, cache, log, metrics.Recorder{})
	if err != nil {
		zapLog.Fatal("profile source unavailable", zap.Error(err))
	}

	tables := matching.DefaultTables()
	if cfg.Matching.TablesFile != "" {
		tables, err = matching.LoadTablesFile(cfg.Matching.TablesFile)
		if err != nil {
			zapLog.Fatal("scoring tables invalid", zap.Error(err), zap.String("path", cfg.Matching.TablesFile))
		}
	}
	scorer := matching.NewScorer(tables)
	ranker := matching.NewRanker(scorer, cfg.Matching.Concurrency)

	assessor, err := qualitative.New(ctx, cfg.Qualitative)
	if err != nil {
		zapLog.Fatal("qualitative assessor failed", zap.Error(err))
	}
	enhancer := qualitative.NewEnhancer(assessor, scorer, cfg.Qualitative.Weight, log,
		qualitative.WithTimeout(config.GetDuration(cfg.Qualitative.Timeout)),
		qualitative.WithRecorder(metrics.Recorder{}),
		qualitative.WithRateLimit(cfg.Qualitative.RateLimit, cfg.Qualitative.RateBurst),
	)
	zapLog.Info("Matching engine ready",
		zap.String("source", cfg.Acquisition.Source),
		zap.Bool("qualitative", enhancer.Enabled()),
		zap.String("provider", cfg.Qualitative.Provider),
	)

	// --- Workers ---
	workers := registerWorkers(cfg, zeebe, workerDeps{
		source:   source,
		clients:  clients,
		scorer:   scorer,
		ranker:   ranker,
		enhancer: enhancer,
		obs:      obs,
	}, log)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           healthMux(zeebe, clients),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

type workerDeps struct {
	source   acquisition.Source
	clients  *database.Clients
	scorer   *matching.Scorer
	ranker   *matching.Ranker
	enhancer *qualitative.Enhancer
	obs      *observability.Observability
}

func registerWorkers(cfg *config.Config, zeebe *camunda.Client, deps workerDeps, log logger.Logger) []*camunda.Worker {
	var search *acquisition.CandidateSearch
	if deps.clients.Elasticsearch != nil {
		search = acquisition.NewCandidateSearch(deps.clients.Elasticsearch.Client, cfg.Database.Elasticsearch.AthleteIndex)
	}

	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.Zeebe(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       taskTimeout(taskType, wcfg),
		}, handler, log, deps.obs))
	}

	if config.IsWorkerEnabled(cfg, pmf.TaskType) {
		c := pmf.LoadConfig()
		c.Timeout = taskTimeout(pmf.TaskType, config.GetWorkerConfig(cfg, pmf.TaskType))
		start(pmf.TaskType, pmf.NewHandler(c, log))
	}

	if config.IsWorkerEnabled(cfg, sc.TaskType) {
		if search == nil {
			log.Warn("search-candidates enabled without elasticsearch; worker not started", nil)
		} else {
			c := sc.LoadConfig()
			c.Timeout = taskTimeout(sc.TaskType, config.GetWorkerConfig(cfg, sc.TaskType))
			start(sc.TaskType, sc.NewHandler(c, search, log))
		}
	}

	if config.IsWorkerEnabled(cfg, sm.TaskType) {
		c := sm.LoadConfig()
		c.Timeout = taskTimeout(sm.TaskType, config.GetWorkerConfig(cfg, sm.TaskType))
		start(sm.TaskType, sm.NewHandler(c, deps.source, deps.scorer, deps.enhancer, log))
	}

	if config.IsWorkerEnabled(cfg, rc.TaskType) {
		c := rc.LoadConfig()
		c.Timeout = taskTimeout(rc.TaskType, config.GetWorkerConfig(cfg, rc.TaskType))
		if cfg.Acquisition.PageSize > 0 {
			c.PageSize = cfg.Acquisition.PageSize
		}
		rdeps := rc.Deps{
			Source:   deps.source,
			Ranker:   deps.ranker,
			Enhancer: deps.enhancer,
			Obs:      deps.obs,
		}
		if search != nil {
			rdeps.Search = search
		}
		start(rc.TaskType, rc.NewHandler(c, rdeps, log))
	}

	if config.IsWorkerEnabled(cfg, em.TaskType) {
		c := em.LoadConfig()
		c.Timeout = taskTimeout(em.TaskType, config.GetWorkerConfig(cfg, em.TaskType))
		c.FailOnError = cfg.Qualitative.FailOnError
		start(em.TaskType, em.NewHandler(c, deps.enhancer, log))
	}

	return workers
}

// taskTimeout prefers the configured worker timeout and falls back to the
// activity registry.
func taskTimeout(taskType string, wcfg config.WorkerConfig) time.Duration {
	if wcfg.Timeout > 0 {
		return config.GetDuration(wcfg.Timeout)
	}
	if activity, ok := registry.MustDefault().Find(taskType); ok {
		if d, err := activity.TimeoutDuration(); err == nil && d > 0 {
			return d
		}
	}
	return 30 * time.Second
}

func healthMux(zeebe *camunda.Client, clients *database.Clients) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		record := func(name string, err error) {
			if err != nil {
				ready = false
				checks[name] = err.Error()
				return
			}
			checks[name] = "ok"
		}
		record("zeebe", zeebe.HealthCheck(ctx))
		for name, err := range clients.Health(ctx) {
			record(name, err)
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
