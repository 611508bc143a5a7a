package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/application/contentpack"
	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	wfmodel "repurpose-ai-api/internal/workflow/model"
	apperrors "repurpose-ai-api/pkg/errors"
)

// --- 仓储桩 ---

type fkProjectRepo struct {
	projects map[string]*entity.Project // id -> project
	count    int64
}

func newFkProjectRepo() *fkProjectRepo {
	return &fkProjectRepo{projects: make(map[string]*entity.Project)}
}

func (f *fkProjectRepo) Create(ctx context.Context, project *entity.Project) error { return nil }
func (f *fkProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return f.projects[id], nil
}
func (f *fkProjectRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	return p, nil
}
func (f *fkProjectRepo) Update(ctx context.Context, project *entity.Project) error { return nil }
func (f *fkProjectRepo) Delete(ctx context.Context, id string) error               { return nil }
func (f *fkProjectRepo) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}
func (f *fkProjectRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return f.count, nil
}

type fkOutputRepo struct {
	mu      sync.Mutex
	rows    map[string]*entity.Output // "projectID/platform" -> row
	nextID  int
	upserts int
}

func newFkOutputRepo() *fkOutputRepo {
	return &fkOutputRepo{rows: make(map[string]*entity.Output)}
}

func (f *fkOutputRepo) key(projectID string, platform entity.Platform) string {
	return projectID + "/" + string(platform)
}

func (f *fkOutputRepo) Upsert(ctx context.Context, output *entity.Output) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	k := f.key(output.ProjectID, output.Platform)
	if existing, ok := f.rows[k]; ok {
		prior := existing.Content
		existing.Content = output.Content
		existing.IsEdited = false
		output.ID = existing.ID
		return prior, false, nil
	}

	f.nextID++
	output.ID = "out-" + strconv.Itoa(f.nextID)
	output.OriginalContent = output.Content
	clone := *output
	f.rows[k] = &clone
	return "", true, nil
}

func (f *fkOutputRepo) GetByID(ctx context.Context, id string) (*entity.Output, error) {
	return nil, nil
}
func (f *fkOutputRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Output, error) {
	return nil, nil
}
func (f *fkOutputRepo) ListByProject(ctx context.Context, projectID string) ([]*entity.Output, error) {
	return nil, nil
}
func (f *fkOutputRepo) UpdateContent(ctx context.Context, id, content string, isEdited bool) (*entity.Output, error) {
	return nil, nil
}
func (f *fkOutputRepo) DeleteByProject(ctx context.Context, projectID string) error { return nil }

type fkVersionRepo struct {
	mu       sync.Mutex
	versions []*entity.OutputVersion
}

func (f *fkVersionRepo) Append(ctx context.Context, version *entity.OutputVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions = append(f.versions, version)
	return nil
}
func (f *fkVersionRepo) GetByID(ctx context.Context, id string) (*entity.OutputVersion, error) {
	return nil, nil
}
func (f *fkVersionRepo) ListByOutput(ctx context.Context, outputID string) ([]*entity.OutputVersion, error) {
	return nil, nil
}

type fkCacheRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.CacheEntry
	puts    int
}

func newFkCacheRepo() *fkCacheRepo {
	return &fkCacheRepo{entries: make(map[string]*entity.CacheEntry)}
}

func (f *fkCacheRepo) Get(ctx context.Context, key string, now time.Time) (*entity.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	if !ok || entry.Expired(now) {
		return nil, nil
	}
	return entry, nil
}
func (f *fkCacheRepo) Put(ctx context.Context, entry *entity.CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.entries[entry.Key] = entry
	return nil
}
func (f *fkCacheRepo) Stats(ctx context.Context, now time.Time) (*repository.CacheStats, error) {
	return &repository.CacheStats{}, nil
}
func (f *fkCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (f *fkCacheRepo) DeleteAll(ctx context.Context) (int64, error) { return 0, nil }
func (f *fkCacheRepo) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	return 0, nil
}

type fkHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.ProjectHistory
}

func (f *fkHistoryRepo) Create(ctx context.Context, history *entity.ProjectHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, history)
	return nil
}
func (f *fkHistoryRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectHistory], error) {
	return nil, nil
}

type fkVoiceRepo struct {
	voices map[string]*entity.BrandVoice
}

func (f *fkVoiceRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.BrandVoice, error) {
	if f.voices == nil {
		return nil, nil
	}
	return f.voices[id], nil
}

type fkUserRepo struct{ user *entity.User }

func (f *fkUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (f *fkUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return f.user, nil
}
func (f *fkUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.user, nil
}

type fkSubRepo struct{ sub *entity.Subscription }

func (f *fkSubRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	return f.sub, nil
}

type fkAudioRepo struct{}

func (fkAudioRepo) Record(ctx context.Context, usage *entity.AudioUsage) error { return nil }
func (fkAudioRepo) SumMinutesByUser(ctx context.Context, userID string) (float64, error) {
	return 0, nil
}

type fkTx struct{}

func (fkTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// platformAwareClient 按生成输入编程响应的文本客户端桩
type platformAwareClient struct {
	mu      sync.Mutex
	inputs  []*wfmodel.PostGenerateInput
	respond func(in *wfmodel.PostGenerateInput) (string, error)
}

func (f *platformAwareClient) GeneratePost(ctx context.Context, in *wfmodel.PostGenerateInput) (string, error) {
	f.mu.Lock()
	clone := *in
	f.inputs = append(f.inputs, &clone)
	f.mu.Unlock()
	if f.respond == nil {
		return "generated for " + string(in.Platform), nil
	}
	return f.respond(in)
}

func (f *platformAwareClient) GeneratePack(ctx context.Context, in *wfmodel.ContentPackBuildInput) (string, error) {
	return "", errors.New("pack generation not expected in this test")
}

func (f *platformAwareClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inputs)
}

// --- 测试夹具 ---

type orchestratorFixture struct {
	orch     *Orchestrator
	client   *platformAwareClient
	projects *fkProjectRepo
	outputs  *fkOutputRepo
	versions *fkVersionRepo
	cache    *fkCacheRepo
	history  *fkHistoryRepo
	cfg      *config.Config
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	cfg := &config.Config{
		LLM: config.LLMConfig{
			FallbackModel: "fallback-model",
			MaxRetries:    1,
			Backoff: config.BackoffConfig{
				Initial:    time.Millisecond,
				Max:        2 * time.Millisecond,
				Multiplier: 2,
			},
		},
		Plans: config.PlansConfig{
			TrialDays: 7,
			Limits: map[string]config.PlanLimits{
				"free": {MaxProjects: 3},
				"pro":  {MaxProjects: 100, AudioMinutes: 300},
			},
			Models: map[string]map[string]config.ModelParams{
				"free": {
					"default": {Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 2048},
				},
				"pro": {
					"default": {Model: "gpt-4o", Temperature: 0.7, MaxTokens: 4096},
				},
			},
		},
		Generation: config.GenerationConfig{
			MaxConcurrency:      2,
			CacheTTL:            time.Hour,
			PackCacheTTL:        time.Hour,
			LongSourceThreshold: 100000,
		},
	}

	client := &platformAwareClient{}
	retry := NewRetryClient(client, &cfg.LLM)

	users := &fkUserRepo{user: &entity.User{ID: "u1", CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}}
	subs := &fkSubRepo{sub: &entity.Subscription{UserID: "u1", Plan: entity.PlanPro}}
	resolver := plan.NewResolver(users, subs, &cfg.Plans)

	projects := newFkProjectRepo()
	quota := plan.NewQuotaService(resolver, projects, fkAudioRepo{})

	outputs := newFkOutputRepo()
	versions := &fkVersionRepo{}
	cacheRepo := newFkCacheRepo()
	history := &fkHistoryRepo{}
	voices := &fkVoiceRepo{}

	packs := contentpack.NewBuilder(retry, passthroughPackCache{}, &cfg.Generation)

	orch := NewOrchestrator(quota, resolver, projects, outputs, versions, cacheRepo, history, voices, retry, packs, nil, fkTx{}, cfg)

	return &orchestratorFixture{
		orch:     orch,
		client:   client,
		projects: projects,
		outputs:  outputs,
		versions: versions,
		cache:    cacheRepo,
		history:  history,
		cfg:      cfg,
	}
}

type passthroughPackCache struct{}

func (passthroughPackCache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	v, err := loader()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (f *orchestratorFixture) seedProject(postsPerPlatform int) *entity.Project {
	p := &entity.Project{
		ID:               "proj-1",
		OwnerID:          "u1",
		Title:            "My Launch",
		SourceContent:    "we are launching a new product next week",
		Platforms:        entity.StringSlice{"linkedin", "twitter"},
		PostsPerPlatform: postsPerPlatform,
	}
	f.projects.projects[p.ID] = p
	return p
}

// --- 测试 ---

func TestGenerateQuotaGateRunsFirst(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)
	f.projects.count = 100 // pro 上限

	_, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))

	// 配额拒绝时不发生任何模型调用或落库
	assert.Zero(t, f.client.callCount())
	assert.Zero(t, f.outputs.upserts)
}

func TestGenerateUnknownProject(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orch.GenerateForPlatforms(context.Background(), "missing", "u1", "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFoundOrAccessDenied))
}

func TestGenerateForeignProject(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)

	_, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "intruder", "", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFoundOrAccessDenied))
	assert.Zero(t, f.client.callCount())
}

func TestGenerateNoSourceContent(t *testing.T) {
	f := newOrchestratorFixture(t)
	p := f.seedProject(1)
	p.SourceContent = ""

	_, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "   ", nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientContent))
}

func TestGenerateAllPlatformsSucceed(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)

	result, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRequested)
	assert.Len(t, result.Successful, 2)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 2, f.client.callCount())

	platforms := map[entity.Platform]bool{}
	for _, pr := range result.Successful {
		platforms[pr.Platform] = true
		assert.NotEmpty(t, pr.OutputID)
		assert.NotEmpty(t, pr.Content)
		assert.Equal(t, SourceAPI, pr.Source)
		assert.Equal(t, "gpt-4o", pr.Model)
	}
	assert.True(t, platforms[entity.PlatformLinkedIn])
	assert.True(t, platforms[entity.PlatformTwitter])

	// 每个成功平台一条缓存回填 + 一条产出
	assert.Equal(t, 2, f.cache.puts)
	assert.Equal(t, 2, f.outputs.upserts)

	// 审计历史落库
	require.Len(t, f.history.records, 1)
	assert.Equal(t, entity.HistoryActionGenerate, f.history.records[0].Action)
	assert.Equal(t, 2, f.history.records[0].SuccessCount)
}

func TestGenerateUnsupportedPlatformIsolated(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)

	result, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", []string{"linkedin", "tiktok"})
	require.NoError(t, err)

	assert.Len(t, result.Successful, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, string(apperrors.CodeUnsupportedPlatform), result.Failed[0].ErrorCode)
	assert.Contains(t, result.Failed[0].Error, "tiktok")

	// 不支持的平台不触发模型调用
	assert.Equal(t, 1, f.client.callCount())
}

func TestGenerateSinglePlatformFailureDoesNotAbortSiblings(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)
	f.client.respond = func(in *wfmodel.PostGenerateInput) (string, error) {
		if in.Platform == entity.PlatformTwitter {
			return "", errors.New("401 invalid api key")
		}
		return "generated for " + string(in.Platform), nil
	}

	result, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", nil)
	require.NoError(t, err)

	require.Len(t, result.Successful, 1)
	assert.Equal(t, entity.PlatformLinkedIn, result.Successful[0].Platform)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, entity.PlatformTwitter, result.Failed[0].Platform)
	assert.Equal(t, string(apperrors.CodeGenerationFailed), result.Failed[0].ErrorCode)

	// 成功平台照常落库
	assert.Equal(t, 1, f.outputs.upserts)
}

func TestGenerateCacheHitSkipsModel(t *testing.T) {
	f := newOrchestratorFixture(t)
	p := f.seedProject(1)

	// 预置与请求参数完全一致的缓存条目
	fp := Fingerprint(FingerprintInput{
		SourceContent: p.SourceContent,
		Platform:      entity.PlatformLinkedIn,
		Model:         "gpt-4o",
		Temperature:   0.7,
		MaxTokens:     4096,
		SeriesIndex:   1,
		SeriesTotal:   1,
	})
	payload, _ := json.Marshal(cachePayload{Content: "cached content", Model: "gpt-4o"})
	require.NoError(t, f.cache.Put(context.Background(), &entity.CacheEntry{
		Key:       fp,
		ProjectID: p.ID,
		Payload:   payload,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	f.cache.puts = 0

	result, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", []string{"linkedin"})
	require.NoError(t, err)

	require.Len(t, result.Successful, 1)
	assert.Equal(t, SourceCache, result.Successful[0].Source)
	assert.Equal(t, "cached content", result.Successful[0].Content)

	// 命中缓存不调模型也不回填
	assert.Zero(t, f.client.callCount())
	assert.Zero(t, f.cache.puts)

	// 但产出仍然落库
	assert.Equal(t, 1, f.outputs.upserts)
}

func TestGenerateRegenerationSnapshotsPrior(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(1)

	_, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", []string{"linkedin"})
	require.NoError(t, err)
	assert.Empty(t, f.versions.versions)

	// 改变源内容绕过缓存后重新生成
	f.client.respond = func(in *wfmodel.PostGenerateInput) (string, error) {
		return "regenerated content", nil
	}
	_, err = f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "a different source to regenerate from", []string{"linkedin"})
	require.NoError(t, err)

	// 旧内容进入版本历史
	require.Len(t, f.versions.versions, 1)
	assert.Equal(t, "generated for linkedin", f.versions.versions[0].Content)
}

func TestGenerateSeriesJoinsParts(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.seedProject(3)

	f.client.respond = func(in *wfmodel.PostGenerateInput) (string, error) {
		return "part " + strconv.Itoa(in.SeriesIndex), nil
	}

	result, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", []string{"linkedin"})
	require.NoError(t, err)

	require.Len(t, result.Successful, 1)
	assert.Equal(t, "part 1\n\n---\n\npart 2\n\n---\n\npart 3", result.Successful[0].Content)
	assert.Equal(t, 3, f.client.callCount())

	// 系列各篇携带正确的序号
	for i, in := range f.client.inputs {
		assert.Equal(t, i+1, in.SeriesIndex)
		assert.Equal(t, 3, in.SeriesTotal)
	}
}

func TestGenerateBrandVoiceInjected(t *testing.T) {
	f := newOrchestratorFixture(t)
	p := f.seedProject(1)
	p.BrandVoiceID = "bv-1"
	f.orch.voiceRepo = &fkVoiceRepo{voices: map[string]*entity.BrandVoice{
		"bv-1": {ID: "bv-1", UserID: "u1", Name: "Bold", Description: "Confident and direct"},
	}}

	_, err := f.orch.GenerateForPlatforms(context.Background(), "proj-1", "u1", "", []string{"linkedin"})
	require.NoError(t, err)

	require.Len(t, f.client.inputs, 1)
	assert.Equal(t, "Bold: Confident and direct", f.client.inputs[0].BrandVoice)
}
