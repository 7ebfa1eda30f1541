// cmd/defect-mapper/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"defect-reporter/internal/common/auth"
	"defect-reporter/internal/common/aws"
	"defect-reporter/internal/common/camunda"
	"defect-reporter/internal/common/config"
	"defect-reporter/internal/common/database"
	apphttp "defect-reporter/internal/common/http"
	"defect-reporter/internal/common/logger"
	"defect-reporter/internal/common/observability"
	"defect-reporter/internal/defectreporter"
	"defect-reporter/internal/drafts"
	"defect-reporter/internal/events"
	mjf "defect-reporter/internal/workers/defect/map-jira-fields"
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

	zapLog.Info("Starting defect mapper...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()

	// --- Defect reporter API, optionally cached ---
	var headers []apphttp.HeaderSource
	if cfg.DefectReporter.APIKey != "" {
		headers = append(headers, apphttp.APIKey{Header: "x-api-key", Value: cfg.DefectReporter.APIKey})
	}
	if cfg.DefectReporter.OAuth.TokenURL != "" {
		headers = append(headers, auth.NewClientCredentials(
			cfg.DefectReporter.OAuth.TokenURL,
			cfg.DefectReporter.OAuth.ClientID,
			cfg.DefectReporter.OAuth.ClientSecret,
			&http.Client{Timeout: 10 * time.Second},
		))
	}
	httpClient := apphttp.NewClient(config.GetDuration(cfg.DefectReporter.Timeout), headers...)
	var api defectreporter.API = defectreporter.NewClient(cfg.DefectReporter.BaseURL, httpClient, log)

	if cfg.DefectReporter.CacheTTL > 0 {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		api = defectreporter.NewCachedClient(api, redis, config.GetDuration(cfg.DefectReporter.CacheTTL), log)
		zapLog.Info("Field mapping cache enabled")
	}

	// --- Signals and notifications ---
	emitters := events.Multi{events.NewLogEmitter(log)}
	notifiers := events.MultiNotifier{events.NewLogNotifier(log)}

	if cfg.Database.Postgres.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		store := drafts.NewStore(pg.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("draft schema setup failed", zap.Error(err))
		}
		emitters = append(emitters, drafts.NewEmitter(store, log))
	}

	if cfg.Notifications.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher := events.NewSNSPublisher(sns, cfg.Notifications.SNS.TopicARN, cfg.App.Name)
		emitters = append(emitters, publisher)
		notifiers = append(notifiers, publisher)
	}
	if cfg.Notifications.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		notifiers = append(notifiers, events.NewSESNotifier(ses, cfg.Notifications.SES.FromEmail, cfg.Notifications.SES.ToEmail))
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, mjf.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, mjf.TaskType)
		handler := mjf.NewHandler(mjf.LoadConfig(cfg), api, emitters, notifiers, obs, log)
		workers = append(workers, camunda.NewWorker(
			zeebe.GetClient(), mjf.TaskType, wcfg.MaxJobsActive, config.GetDuration(wcfg.Timeout), handler, log,
		))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health / Metrics ---
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			status, code := "healthy", http.StatusOK
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
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
		w.Stop(shutdownCtx)
	}

	zapLog.Info("Defect mapper stopped gracefully")
}
