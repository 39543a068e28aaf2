// cmd/loan-approval/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loan-approval/internal/artifacts"
	"loan-approval/internal/common/camunda"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/prediction"
	"loan-approval/internal/web"
	"loan-approval/pkg/registry"

	pla "loan-approval/internal/workers/loan/predict-loan-approval"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan approval service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serviceName := cfg.Metrics.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	obs, err := observability.New(serviceName)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	// --- Artifacts ---
	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	arts := artifacts.Load(loadCtx, *cfg, log)
	cancelLoad()
	if arts.Err != nil {
		zapLog.Warn("serving without artifacts", zap.Error(arts.Err))
	}

	svc := prediction.NewService(arts.Classifier, arts.Choices, obs, log)

	// --- Optional Zeebe worker ---
	if cfg.Camunda.Enabled {
		stopWorker, err := startWorker(ctx, cfg, svc, arts, log)
		if err != nil {
			zapLog.Error("predict-loan-approval worker not started", zap.Error(err))
		} else {
			defer stopWorker()
		}
	}

	// --- HTTP ---
	srv, err := web.NewServer(*cfg, arts, svc, log)
	if err != nil {
		zapLog.Fatal("http server setup failed", zap.Error(err))
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		zapLog.Error("http server stopped with error", zap.Error(err))
		return
	}

	zapLog.Info("Loan approval service stopped gracefully")
}

// startWorker connects to the broker and opens the job worker. The returned
// func closes both.
func startWorker(ctx context.Context, cfg *config.Config, svc *prediction.Service, arts *artifacts.Artifacts, log logger.Logger) (func(), error) {
	reg, err := registry.LoadRegistry(registry.DefaultPath)
	if err != nil {
		return nil, fmt.Errorf("load activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("activity registry: %w", err)
	}
	activity, ok := reg.Find(pla.TaskType)
	if !ok || !activity.Runnable() {
		return nil, fmt.Errorf("activity %s is not registered as runnable", pla.TaskType)
	}
	log.Info("activity registered", map[string]interface{}{
		"taskType":   activity.TaskType,
		"version":    activity.Version,
		"errorCodes": activity.ErrorCodes,
	})

	client, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            camunda.DefaultRetryConfig,
	})
	if err != nil {
		return nil, err
	}

	wcfg := config.GetWorkerConfig(cfg, pla.TaskType)
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": pla.TaskType})
		client.Close()
		return func() {}, nil
	}

	workerCfg := pla.LoadConfig(wcfg)
	handler := pla.NewHandler(workerCfg, svc, arts.Choices, log)
	w := camunda.NewWorker(client.GetClient(), pla.TaskType, workerCfg.MaxJobsActive, handler, log)
	w.Start()

	return func() {
		w.Stop()
		if err := client.Close(); err != nil {
			log.Error("Error closing Zeebe client", map[string]interface{}{"error": err})
		}
	}, nil
}
