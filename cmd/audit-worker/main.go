// Package main 审计与缓存维护执行器入口（audit-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/infrastructure/messaging"
	"repurpose-ai-api/internal/wire"
	"repurpose-ai-api/pkg/logger"
	"repurpose-ai-api/pkg/metrics"
	"repurpose-ai-api/pkg/tracer"
)

// cacheSweepInterval 过期缓存行清理周期
const cacheSweepInterval = time.Hour

// dlqAlertThreshold 死信队列告警阈值
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "audit-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize data layer", err)
	}
	defer cleanup()

	consumer := messaging.NewConsumer(dataLayer.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamAuditLog,
		Group:         messaging.ConsumerGroupAuditWriter,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
	})

	// 审计流落地：写入结构化日志，由日志管道归档。
	// 动作本身的历史记录在请求路径内同步入库，这里不重复写库。
	consumer.RegisterHandler("audit", func(ctx context.Context, msg *messaging.Message) error {
		var payload messaging.AuditLogMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}

		logger.FromContext(ctx).Info("audit",
			"action", payload.Action,
			"user_id", payload.UserID,
			"project_id", payload.ProjectID,
			"platforms", payload.Platforms,
			"success_count", payload.SuccessCount,
			"failure_count", payload.FailureCount,
			"request_id", payload.RequestID,
			"trace_id", payload.TraceID,
			"detail", payload.Detail,
		)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}

	go consumer.MonitorDLQ(ctx, dlqAlertThreshold)
	go sweepExpiredCache(ctx, dataLayer)

	log := logger.FromContext(ctx)
	log.Info("audit-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("audit-worker shutting down")
	consumer.Stop()
	cancel()
}

// sweepExpiredCache 定期清理过期的生成缓存行。
// 读路径按过期时间过滤，行本身需要后台回收。
func sweepExpiredCache(ctx context.Context, dataLayer *wire.DataLayer) {
	ticker := time.NewTicker(cacheSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := dataLayer.CacheRepo.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.FromContext(ctx).Error("failed to sweep expired cache entries", "error", err)
				metrics.CacheOperations.WithLabelValues("sweep", "error").Inc()
				continue
			}
			if removed > 0 {
				logger.FromContext(ctx).Info("swept expired cache entries", "removed", removed)
			}
			metrics.CacheOperations.WithLabelValues("sweep", "ok").Inc()
		}
	}
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
