//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/interfaces/http/router"
)

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MessagingSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		GenerationSet,
		ApplicationSet,
		RouterSet,
	)
	return nil, nil, nil
}
