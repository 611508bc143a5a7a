// Package port 声明工作流层对外部能力的最小依赖
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按提供方名称解析 ChatModel 实例。
// 名称为空时由实现方回落到默认提供方。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}
