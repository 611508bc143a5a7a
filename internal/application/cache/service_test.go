package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
)

type fakeCacheRepo struct {
	stats        *repository.CacheStats
	expired      int64
	all          int64
	byProject    int64
	deleteErr    error
	projectCalls []string
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, now time.Time) (*entity.CacheEntry, error) {
	return nil, nil
}
func (f *fakeCacheRepo) Put(ctx context.Context, entry *entity.CacheEntry) error { return nil }
func (f *fakeCacheRepo) Stats(ctx context.Context, now time.Time) (*repository.CacheStats, error) {
	return f.stats, nil
}
func (f *fakeCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.expired, f.deleteErr
}
func (f *fakeCacheRepo) DeleteAll(ctx context.Context) (int64, error) {
	return f.all, f.deleteErr
}
func (f *fakeCacheRepo) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	f.projectCalls = append(f.projectCalls, projectID)
	return f.byProject, f.deleteErr
}

type fakePackInvalidator struct {
	calls []string
	err   error
}

func (f *fakePackInvalidator) InvalidateProject(ctx context.Context, projectID string) error {
	f.calls = append(f.calls, projectID)
	return f.err
}

type fakeHistoryRepo struct {
	records []*entity.ProjectHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *entity.ProjectHistory) error {
	f.records = append(f.records, history)
	return nil
}
func (f *fakeHistoryRepo) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectHistory], error) {
	return nil, nil
}

func TestStatsPassthrough(t *testing.T) {
	repo := &fakeCacheRepo{stats: &repository.CacheStats{Total: 12, Expired: 3, SizeBytes: 4096}}
	s := NewService(repo, nil, nil)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(3), stats.Expired)
}

func TestCleanExpired(t *testing.T) {
	repo := &fakeCacheRepo{expired: 7}
	s := NewService(repo, nil, nil)

	removed, err := s.CleanExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
}

func TestCleanExpiredPropagatesError(t *testing.T) {
	repo := &fakeCacheRepo{deleteErr: errors.New("db down")}
	s := NewService(repo, nil, nil)

	_, err := s.CleanExpired(context.Background())
	assert.Error(t, err)
}

func TestCleanAll(t *testing.T) {
	repo := &fakeCacheRepo{all: 42}
	s := NewService(repo, nil, nil)

	removed, err := s.CleanAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), removed)
}

func TestInvalidateProjectCoversBothStores(t *testing.T) {
	repo := &fakeCacheRepo{byProject: 5}
	packs := &fakePackInvalidator{}
	history := &fakeHistoryRepo{}
	s := NewService(repo, packs, history)

	removed, err := s.InvalidateProject(context.Background(), "proj-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.Equal(t, []string{"proj-1"}, repo.projectCalls)
	assert.Equal(t, []string{"proj-1"}, packs.calls)

	require.Len(t, history.records, 1)
	assert.Equal(t, entity.HistoryActionInvalidate, history.records[0].Action)
	assert.Equal(t, "u1", history.records[0].UserID)
}

func TestInvalidateProjectPackFailureIsNonFatal(t *testing.T) {
	repo := &fakeCacheRepo{byProject: 2}
	packs := &fakePackInvalidator{err: errors.New("redis down")}
	s := NewService(repo, packs, nil)

	removed, err := s.InvalidateProject(context.Background(), "proj-1", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
