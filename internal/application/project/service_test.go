package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/config"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
)

// --- 仓储桩 ---

type fakeProjectRepo struct {
	projects map[string]*entity.Project
	count    int64
	nextID   int
	deleted  []string
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*entity.Project)}
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	f.nextID++
	if project.ID == "" {
		project.ID = "proj-" + string(rune('0'+f.nextID))
	}
	clone := *project
	f.projects[project.ID] = &clone
	return nil
}
func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return f.projects[id], nil
}
func (f *fakeProjectRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}
func (f *fakeProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	clone := *project
	f.projects[project.ID] = &clone
	return nil
}
func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	delete(f.projects, id)
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeProjectRepo) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}
func (f *fakeProjectRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return f.count, nil
}

type fakeVoiceRepo struct {
	voices map[string]*entity.BrandVoice
}

func (f *fakeVoiceRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.BrandVoice, error) {
	if f.voices == nil {
		return nil, nil
	}
	v, ok := f.voices[id]
	if !ok || v.UserID != ownerID {
		return nil, nil
	}
	return v, nil
}

type fakeCacheRepo struct {
	projectCalls []string
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, now time.Time) (*entity.CacheEntry, error) {
	return nil, nil
}
func (f *fakeCacheRepo) Put(ctx context.Context, entry *entity.CacheEntry) error { return nil }
func (f *fakeCacheRepo) Stats(ctx context.Context, now time.Time) (*repository.CacheStats, error) {
	return nil, nil
}
func (f *fakeCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeCacheRepo) DeleteAll(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeCacheRepo) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	f.projectCalls = append(f.projectCalls, projectID)
	return 0, nil
}

type fakePackInvalidator struct {
	calls []string
}

func (f *fakePackInvalidator) InvalidateProject(ctx context.Context, projectID string) error {
	f.calls = append(f.calls, projectID)
	return nil
}

type fakeUserRepo struct{ user *entity.User }

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return f.user, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.user, nil
}

type fakeSubRepo struct{ sub *entity.Subscription }

func (f *fakeSubRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	return f.sub, nil
}

type fakeAudioRepo struct{}

func (fakeAudioRepo) Record(ctx context.Context, usage *entity.AudioUsage) error { return nil }
func (fakeAudioRepo) SumMinutesByUser(ctx context.Context, userID string) (float64, error) {
	return 0, nil
}

type projectFixture struct {
	svc      *Service
	projects *fakeProjectRepo
	voices   *fakeVoiceRepo
	cache    *fakeCacheRepo
	packs    *fakePackInvalidator
}

func newProjectFixture() *projectFixture {
	cfg := &config.PlansConfig{
		TrialDays: 7,
		Limits: map[string]config.PlanLimits{
			"free": {MaxProjects: 3},
		},
	}
	users := &fakeUserRepo{user: &entity.User{ID: "u1", CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}}
	resolver := plan.NewResolver(users, &fakeSubRepo{}, cfg)

	projects := newFakeProjectRepo()
	voices := &fakeVoiceRepo{}
	cacheRepo := &fakeCacheRepo{}
	packs := &fakePackInvalidator{}
	quota := plan.NewQuotaService(resolver, projects, fakeAudioRepo{})

	return &projectFixture{
		svc:      NewService(projects, voices, cacheRepo, packs, quota),
		projects: projects,
		voices:   voices,
		cache:    cacheRepo,
		packs:    packs,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPlatforms(t *testing.T) {
	f := newProjectFixture()

	p, err := f.svc.Create(context.Background(), "u1", CreateInput{
		Title:            "  My Launch  ",
		SourceContent:    "source",
		Platforms:        []string{"LinkedIn", "twitter", "TWITTER"},
		PostsPerPlatform: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "My Launch", p.Title)
	assert.Equal(t, entity.StringSlice{"linkedin", "twitter"}, p.Platforms)
	assert.Equal(t, 3, p.PostsPerPlatform)
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.Create(context.Background(), "u1", CreateInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParam))
}

func TestCreateQuotaGate(t *testing.T) {
	f := newProjectFixture()
	f.projects.count = 3 // free 上限

	_, err := f.svc.Create(context.Background(), "u1", CreateInput{Title: "x", Platforms: []string{"linkedin"}})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))
	assert.Empty(t, f.projects.projects)
}

func TestCreateRejectsUnsupportedPlatform(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.Create(context.Background(), "u1", CreateInput{
		Title:     "x",
		Platforms: []string{"linkedin", "tiktok"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnsupportedPlatform))
}

func TestCreateRejectsForeignBrandVoice(t *testing.T) {
	f := newProjectFixture()
	f.voices.voices = map[string]*entity.BrandVoice{
		"bv-1": {ID: "bv-1", UserID: "someone-else"},
	}

	_, err := f.svc.Create(context.Background(), "u1", CreateInput{
		Title:        "x",
		BrandVoiceID: "bv-1",
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFoundOrAccessDenied))
}

func TestGetForeignProject(t *testing.T) {
	f := newProjectFixture()
	f.projects.projects["proj-1"] = &entity.Project{ID: "proj-1", OwnerID: "u1"}

	_, err := f.svc.Get(context.Background(), "proj-1", "intruder")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFoundOrAccessDenied))
}

func TestUpdateSourceChangeInvalidatesCaches(t *testing.T) {
	f := newProjectFixture()
	f.projects.projects["proj-1"] = &entity.Project{ID: "proj-1", OwnerID: "u1", Title: "t", SourceContent: "old"}

	p, err := f.svc.Update(context.Background(), "proj-1", "u1", UpdateInput{
		SourceContent: strPtr("new source"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new source", p.SourceContent)
	assert.Equal(t, []string{"proj-1"}, f.cache.projectCalls)
	assert.Equal(t, []string{"proj-1"}, f.packs.calls)
}

func TestUpdateWithoutSourceChangeKeepsCaches(t *testing.T) {
	f := newProjectFixture()
	f.projects.projects["proj-1"] = &entity.Project{ID: "proj-1", OwnerID: "u1", Title: "t", SourceContent: "same"}

	_, err := f.svc.Update(context.Background(), "proj-1", "u1", UpdateInput{
		Title: strPtr("new title"),
	})
	require.NoError(t, err)
	assert.Empty(t, f.cache.projectCalls)
	assert.Empty(t, f.packs.calls)
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	f := newProjectFixture()
	f.projects.projects["proj-1"] = &entity.Project{ID: "proj-1", OwnerID: "u1", Title: "t"}

	_, err := f.svc.Update(context.Background(), "proj-1", "u1", UpdateInput{Title: strPtr("  ")})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidParam))
}

func TestDeleteCascadesInvalidation(t *testing.T) {
	f := newProjectFixture()
	f.projects.projects["proj-1"] = &entity.Project{ID: "proj-1", OwnerID: "u1", Title: "t"}

	require.NoError(t, f.svc.Delete(context.Background(), "proj-1", "u1"))
	assert.Equal(t, []string{"proj-1"}, f.projects.deleted)
	assert.Equal(t, []string{"proj-1"}, f.cache.projectCalls)
	assert.Equal(t, []string{"proj-1"}, f.packs.calls)
	assert.Empty(t, f.projects.projects)
}
