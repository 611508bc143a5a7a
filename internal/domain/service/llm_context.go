// Package service 提供跨层共享的领域上下文标记
package service

import (
	"context"
	"strings"
)

type ctxKey int

const (
	workflowKey ctxKey = iota
	providerKey
)

// WithWorkflowProvider 在上下文中标记当前 LLM 调用所属的工作流与提供方，
// 供下游日志与指标归因。空值不覆盖已有标记。
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if w := strings.TrimSpace(workflow); w != "" {
		ctx = context.WithValue(ctx, workflowKey, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, providerKey, p)
	}
	return ctx
}

// WorkflowFromContext 读取工作流标记，未标记时返回 "unknown"
func WorkflowFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(workflowKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// ProviderFromContext 读取提供方标记，未标记时返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
