package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
)

// fakeProjectCounter 只实现配额检查用到的项目仓储
type fakeProjectCounter struct {
	count int64
}

func (f *fakeProjectCounter) Create(ctx context.Context, project *entity.Project) error { return nil }
func (f *fakeProjectCounter) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return nil, nil
}
func (f *fakeProjectCounter) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	return nil, nil
}
func (f *fakeProjectCounter) Update(ctx context.Context, project *entity.Project) error { return nil }
func (f *fakeProjectCounter) Delete(ctx context.Context, id string) error               { return nil }
func (f *fakeProjectCounter) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}
func (f *fakeProjectCounter) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return f.count, nil
}

// fakeAudioRepo 音频用量仓储桩
type fakeAudioRepo struct {
	used     float64
	recorded []*entity.AudioUsage
}

func (f *fakeAudioRepo) Record(ctx context.Context, usage *entity.AudioUsage) error {
	f.recorded = append(f.recorded, usage)
	return nil
}
func (f *fakeAudioRepo) SumMinutesByUser(ctx context.Context, userID string) (float64, error) {
	return f.used, nil
}

func quotaServiceForPlan(plan entity.PlanType, projects int64, audioUsed float64) *QuotaService {
	users := &fakeUserRepo{user: &entity.User{ID: "u1", CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}}
	subs := &fakeSubRepo{}
	if plan != entity.PlanFree {
		subs.sub = &entity.Subscription{UserID: "u1", Plan: plan}
	}
	resolver := NewResolver(users, subs, plansTestConfig())
	return NewQuotaService(resolver, &fakeProjectCounter{count: projects}, &fakeAudioRepo{used: audioUsed})
}

func TestCheckProjectQuotaUnderLimit(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanFree, 2, 0)

	quota, err := s.CheckProjectQuota(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, quota.CanCreate)
	assert.Equal(t, int64(2), quota.Current)
	assert.Equal(t, 3, quota.Limit)
	assert.Equal(t, entity.PlanFree, quota.Plan)
}

func TestCheckProjectQuotaAtLimit(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanFree, 3, 0)

	quota, err := s.CheckProjectQuota(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, quota.CanCreate)
}

func TestRequireProjectQuotaRejects(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanFree, 3, 0)

	err := s.RequireProjectQuota(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))

	// 检查是只读的，重复调用结果一致
	err = s.RequireProjectQuota(context.Background(), "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))
}

func TestRequireProjectQuotaAllows(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanPro, 50, 0)
	assert.NoError(t, s.RequireProjectQuota(context.Background(), "u1"))
}

func TestCheckAudioQuotaZeroLimitAlwaysRejected(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanFree, 0, 0)

	quota, err := s.CheckAudioQuota(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, quota.Allowed)
	assert.Equal(t, 0, quota.LimitMinutes)
}

func TestCheckAudioQuotaUsageBoundary(t *testing.T) {
	under := quotaServiceForPlan(entity.PlanPro, 0, 299.5)
	quota, err := under.CheckAudioQuota(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, quota.Allowed)

	at := quotaServiceForPlan(entity.PlanPro, 0, 300)
	quota, err = at.CheckAudioQuota(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, quota.Allowed)
}

func TestRequireAudioQuotaRejects(t *testing.T) {
	s := quotaServiceForPlan(entity.PlanFree, 0, 0)

	err := s.RequireAudioQuota(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))
}
