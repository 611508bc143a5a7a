// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	appcache "repurpose-ai-api/internal/application/cache"
	"repurpose-ai-api/internal/application/contentpack"
	"repurpose-ai-api/internal/application/editor"
	"repurpose-ai-api/internal/application/generation"
	"repurpose-ai-api/internal/application/intake"
	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/application/project"
	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/repository"
	"repurpose-ai-api/internal/infrastructure/extract"
	"repurpose-ai-api/internal/infrastructure/llm"
	"repurpose-ai-api/internal/infrastructure/messaging"
	"repurpose-ai-api/internal/infrastructure/persistence/postgres"
	"repurpose-ai-api/internal/infrastructure/persistence/redis"
	"repurpose-ai-api/internal/interfaces/http/handler"
	"repurpose-ai-api/internal/interfaces/http/middleware"
	"repurpose-ai-api/internal/interfaces/http/router"
	"repurpose-ai-api/internal/workflow/chain"
	workflowport "repurpose-ai-api/internal/workflow/port"
)

// DataLayer 数据层依赖容器（worker 等非 HTTP 入口使用）
type DataLayer struct {
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	UserRepo    *postgres.UserRepository
	SubRepo     *postgres.SubscriptionRepository
	AudioRepo   *postgres.AudioUsageRepository
	VoiceRepo   *postgres.BrandVoiceRepository
	ProjectRepo *postgres.ProjectRepository
	OutputRepo  *postgres.OutputRepository
	VersionRepo *postgres.OutputVersionRepository
	CacheRepo   *postgres.CacheEntryRepository
	HistoryRepo *postgres.ProjectHistoryRepository

	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	Producer *messaging.Producer
}

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient *postgres.Client
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewSubscriptionRepository,
	postgres.NewAudioUsageRepository,
	postgres.NewBrandVoiceRepository,
	postgres.NewProjectRepository,
	postgres.NewOutputRepository,
	postgres.NewOutputVersionRepository,
	postgres.NewCacheEntryRepository,
	postgres.NewProjectHistoryRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.SubscriptionRepository), new(*postgres.SubscriptionRepository)),
	wire.Bind(new(repository.AudioUsageRepository), new(*postgres.AudioUsageRepository)),
	wire.Bind(new(repository.BrandVoiceRepository), new(*postgres.BrandVoiceRepository)),
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
	wire.Bind(new(repository.OutputRepository), new(*postgres.OutputRepository)),
	wire.Bind(new(repository.OutputVersionRepository), new(*postgres.OutputVersionRepository)),
	wire.Bind(new(repository.CacheEntryRepository), new(*postgres.CacheEntryRepository)),
	wire.Bind(new(repository.ProjectHistoryRepository), new(*postgres.ProjectHistoryRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(contentpack.PackCache), new(*redis.Cache)),
	wire.Bind(new(appcache.PackInvalidator), new(*redis.Cache)),
	wire.Bind(new(project.PackInvalidator), new(*redis.Cache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// GenerationSet 生成链路提供者集合
var GenerationSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewPostChain,
	chain.NewContentPackChain,
	generation.NewChainTextClient,
	wire.Bind(new(generation.TextClient), new(*generation.ChainTextClient)),
	ProvideRetryClient,
	wire.Bind(new(contentpack.PackGenerator), new(*generation.RetryClient)),
	ProvideContentPackBuilder,
)

// ApplicationSet 应用服务提供者集合
var ApplicationSet = wire.NewSet(
	ProvidePlanResolver,
	plan.NewQuotaService,
	generation.NewOrchestrator,
	appcache.NewService,
	editor.NewService,
	project.NewService,
	ProvideTextExtractor,
	ProvideSpeechToText,
	intake.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewProjectHandler,
	handler.NewGenerationHandler,
	handler.NewOutputHandler,
	handler.NewCacheHandler,
	handler.NewIntakeHandler,
	handler.NewQuotaHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideRetryClient 提供重试客户端
func ProvideRetryClient(client generation.TextClient, cfg *config.Config) *generation.RetryClient {
	return generation.NewRetryClient(client, &cfg.LLM)
}

// ProvideContentPackBuilder 提供素材包构建器
func ProvideContentPackBuilder(retry contentpack.PackGenerator, cache contentpack.PackCache, cfg *config.Config) *contentpack.Builder {
	return contentpack.NewBuilder(retry, cache, &cfg.Generation)
}

// ProvidePlanResolver 提供计划解析器
func ProvidePlanResolver(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, cfg *config.Config) *plan.Resolver {
	return plan.NewResolver(userRepo, subRepo, &cfg.Plans)
}

// ProvideTextExtractor 提供文档抽取器
func ProvideTextExtractor() intake.TextExtractor {
	return extract.NewPlainTextExtractor()
}

// ProvideSpeechToText 提供音频转写端口。
// 未接入外部转写服务时返回 nil，音频入口返回 503。
func ProvideSpeechToText() intake.SpeechToText {
	return nil
}
