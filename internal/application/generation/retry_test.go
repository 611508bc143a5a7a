package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/config"
	wfmodel "repurpose-ai-api/internal/workflow/model"
)

// fakeTextClient 可编程的文本客户端桩
type fakeTextClient struct {
	mu      sync.Mutex
	calls   []string // 按调用顺序记录使用的模型
	respond func(model string, call int) (string, error)
}

func (f *fakeTextClient) GeneratePost(ctx context.Context, in *wfmodel.PostGenerateInput) (string, error) {
	return f.record(in.Model)
}

func (f *fakeTextClient) GeneratePack(ctx context.Context, in *wfmodel.ContentPackBuildInput) (string, error) {
	return f.record(in.Model)
}

func (f *fakeTextClient) record(model string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	n := len(f.calls)
	f.mu.Unlock()
	return f.respond(model, n)
}

func (f *fakeTextClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTextClient) modelsCalled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func retryTestConfig() *config.LLMConfig {
	return &config.LLMConfig{
		FallbackModel: "fallback-model",
		MaxRetries:    2,
		Backoff: config.BackoffConfig{
			Initial:    time.Millisecond,
			Max:        2 * time.Millisecond,
			Multiplier: 2,
		},
	}
}

func TestRetryClientSucceedsFirstTry(t *testing.T) {
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		return "generated", nil
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	content, modelUsed, err := rc.GeneratePostWithRetry(context.Background(), &wfmodel.PostGenerateInput{Model: "primary"})
	require.NoError(t, err)
	assert.Equal(t, "generated", content)
	assert.Equal(t, "primary", modelUsed)
	assert.Equal(t, 1, fake.callCount())
}

func TestRetryClientExhaustsBothModels(t *testing.T) {
	transient := errors.New("upstream returned 503")
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		return "", transient
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	_, _, err := rc.GeneratePostWithRetry(context.Background(), &wfmodel.PostGenerateInput{Model: "primary"})
	require.Error(t, err)

	// 主模型 maxRetries 次 + 兜底模型 maxRetries 次，恰好 2×maxRetries
	assert.Equal(t, 4, fake.callCount())
	assert.Equal(t, []string{"primary", "primary", "fallback-model", "fallback-model"}, fake.modelsCalled())
}

func TestRetryClientFallbackSucceeds(t *testing.T) {
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		if model == "fallback-model" {
			return "saved by fallback", nil
		}
		return "", errors.New("rate limit exceeded")
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	content, modelUsed, err := rc.GeneratePostWithRetry(context.Background(), &wfmodel.PostGenerateInput{Model: "primary"})
	require.NoError(t, err)
	assert.Equal(t, "saved by fallback", content)
	assert.Equal(t, "fallback-model", modelUsed)
	assert.Equal(t, 3, fake.callCount())
}

func TestRetryClientNonRetryableShortCircuits(t *testing.T) {
	fatal := errors.New("401 invalid api key")
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		return "", fatal
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	_, _, err := rc.GeneratePostWithRetry(context.Background(), &wfmodel.PostGenerateInput{Model: "primary"})
	require.Error(t, err)

	// 不可重试错误每个模型只尝试一次
	assert.Equal(t, 2, fake.callCount())
	assert.Equal(t, []string{"primary", "fallback-model"}, fake.modelsCalled())
}

func TestRetryClientFallbackEqualsPrimary(t *testing.T) {
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		return "", errors.New("upstream returned 500")
	}}
	cfg := retryTestConfig()
	cfg.FallbackModel = "primary"
	rc := NewRetryClient(fake, cfg)

	_, _, err := rc.GeneratePostWithRetry(context.Background(), &wfmodel.PostGenerateInput{Model: "primary"})
	require.Error(t, err)

	// 兜底与主模型相同，不重复第二阶段
	assert.Equal(t, 2, fake.callCount())
}

func TestRetryClientPackPath(t *testing.T) {
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		return `{"ok":true}`, nil
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	content, modelUsed, err := rc.GeneratePackWithRetry(context.Background(), &wfmodel.ContentPackBuildInput{Model: "primary"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, content)
	assert.Equal(t, "primary", modelUsed)
}

func TestRetryClientDoesNotMutateInput(t *testing.T) {
	fake := &fakeTextClient{respond: func(model string, call int) (string, error) {
		if model == "fallback-model" {
			return "ok", nil
		}
		return "", errors.New("timeout")
	}}
	rc := NewRetryClient(fake, retryTestConfig())

	in := &wfmodel.PostGenerateInput{Model: "primary"}
	_, _, err := rc.GeneratePostWithRetry(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "primary", in.Model)
}
