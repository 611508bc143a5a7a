package intake

import (
	"context"
	"errors"
	"io"
	"strings"
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

type stubUserRepo struct{ user *entity.User }

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.user, nil
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.user, nil
}

type stubSubRepo struct{ sub *entity.Subscription }

func (s *stubSubRepo) GetActiveByUser(ctx context.Context, userID string) (*entity.Subscription, error) {
	return s.sub, nil
}

type stubAudioRepo struct {
	used     float64
	recorded []*entity.AudioUsage
}

func (s *stubAudioRepo) Record(ctx context.Context, usage *entity.AudioUsage) error {
	s.recorded = append(s.recorded, usage)
	return nil
}
func (s *stubAudioRepo) SumMinutesByUser(ctx context.Context, userID string) (float64, error) {
	return s.used, nil
}

// --- 端口桩 ---

type stubExtractor struct {
	result *ExtractedText
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, r io.Reader, contentType string) (*ExtractedText, error) {
	return s.result, s.err
}

type stubSTT struct {
	calls      int
	transcript *Transcript
	err        error
}

func (s *stubSTT) Transcribe(ctx context.Context, r io.Reader, filename string) (*Transcript, error) {
	s.calls++
	return s.transcript, s.err
}

type stubProjectCounter struct{}

func (stubProjectCounter) Create(ctx context.Context, project *entity.Project) error { return nil }
func (stubProjectCounter) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return nil, nil
}
func (stubProjectCounter) GetByIDForOwner(ctx context.Context, id, ownerID string) (*entity.Project, error) {
	return nil, nil
}
func (stubProjectCounter) Update(ctx context.Context, project *entity.Project) error { return nil }
func (stubProjectCounter) Delete(ctx context.Context, id string) error               { return nil }
func (stubProjectCounter) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	return nil, nil
}
func (stubProjectCounter) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return 0, nil
}

// quotaForAudio 用真实的解析与配额服务组装测试夹具
func quotaForAudio(planType entity.PlanType, audioRepo *stubAudioRepo) *plan.QuotaService {
	cfg := &config.PlansConfig{
		TrialDays: 7,
		Limits: map[string]config.PlanLimits{
			"free": {MaxProjects: 3, AudioMinutes: 0},
			"pro":  {MaxProjects: 100, AudioMinutes: 300},
		},
	}
	users := &stubUserRepo{user: &entity.User{ID: "u1", CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}}
	subs := &stubSubRepo{}
	if planType != entity.PlanFree {
		subs.sub = &entity.Subscription{UserID: "u1", Plan: planType}
	}
	resolver := plan.NewResolver(users, subs, cfg)
	return plan.NewQuotaService(resolver, stubProjectCounter{}, audioRepo)
}

func TestNormalizeTranscript(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeTranscript("  a  b  \n\n  c  "))
	assert.Equal(t, "", NormalizeTranscript("   \n\t  "))
	assert.Equal(t, "hello world", NormalizeTranscript("hello world"))
}

func TestFromTextNormalizes(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	result, err := s.FromText(context.Background(), "  hello   wonderful\n\nworld  ")
	require.NoError(t, err)
	assert.Equal(t, "hello wonderful world", result.Text)
}

func TestFromTextTooShort(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	_, err := s.FromText(context.Background(), "  short  ")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientContent))
}

func TestFromDocument(t *testing.T) {
	extractor := &stubExtractor{result: &ExtractedText{Text: "extracted  document\ntext here", Truncated: true}}
	s := NewService(extractor, nil, nil, nil)

	result, err := s.FromDocument(context.Background(), strings.NewReader("ignored"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "extracted document text here", result.Text)
	assert.True(t, result.Truncated)
}

func TestFromDocumentExtractorMissing(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	_, err := s.FromDocument(context.Background(), strings.NewReader("x"), "text/plain")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeServiceUnavailable))
}

func TestFromDocumentExtractorFails(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("boom")}
	s := NewService(extractor, nil, nil, nil)

	_, err := s.FromDocument(context.Background(), strings.NewReader("x"), "text/plain")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternalError))
}

func TestFromAudioSTTMissing(t *testing.T) {
	audioRepo := &stubAudioRepo{}
	s := NewService(nil, nil, quotaForAudio(entity.PlanPro, audioRepo), audioRepo)

	_, err := s.FromAudio(context.Background(), "u1", "proj-1", strings.NewReader("x"), "a.mp3")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeServiceUnavailable))
}

func TestFromAudioQuotaGateBeforeTranscription(t *testing.T) {
	audioRepo := &stubAudioRepo{}
	stt := &stubSTT{transcript: &Transcript{Text: "should never be reached"}}
	s := NewService(nil, stt, quotaForAudio(entity.PlanFree, audioRepo), audioRepo)

	_, err := s.FromAudio(context.Background(), "u1", "proj-1", strings.NewReader("x"), "a.mp3")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeQuotaExceeded))
	assert.Zero(t, stt.calls)
}

func TestFromAudioRecordsUsage(t *testing.T) {
	audioRepo := &stubAudioRepo{}
	stt := &stubSTT{transcript: &Transcript{
		Text:            "  this is  the transcribed  audio content  ",
		Language:        "en",
		DurationSeconds: 90,
	}}
	s := NewService(nil, stt, quotaForAudio(entity.PlanPro, audioRepo), audioRepo)

	result, err := s.FromAudio(context.Background(), "u1", "proj-1", strings.NewReader("x"), "a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "this is the transcribed audio content", result.Text)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 1.5, result.AudioMinutes)

	require.Len(t, audioRepo.recorded, 1)
	assert.Equal(t, 1.5, audioRepo.recorded[0].Minutes)
	assert.Equal(t, "u1", audioRepo.recorded[0].UserID)
}

func TestFromAudioTranscriptionFails(t *testing.T) {
	audioRepo := &stubAudioRepo{}
	stt := &stubSTT{err: errors.New("upstream hiccup")}
	s := NewService(nil, stt, quotaForAudio(entity.PlanPro, audioRepo), audioRepo)

	_, err := s.FromAudio(context.Background(), "u1", "proj-1", strings.NewReader("x"), "a.mp3")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTranscribeError))
	assert.Empty(t, audioRepo.recorded)
}
