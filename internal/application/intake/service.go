package intake

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"

	"repurpose-ai-api/internal/application/plan"
	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/internal/domain/repository"
	apperrors "repurpose-ai-api/pkg/errors"
	"repurpose-ai-api/pkg/logger"
)

var tracer = otel.Tracer("application.intake")

// minViableLength 规范化后低于该长度的内容视为不可用
const minViableLength = 10

// Result 接入结果
type Result struct {
	Text string `json:"text"`
	// Truncated 文档超出抽取上限被截断
	Truncated bool `json:"truncated,omitempty"`
	// Language 音频转写识别到的语言
	Language string `json:"language,omitempty"`
	// AudioMinutes 本次转写计入配额的分钟数
	AudioMinutes float64 `json:"audio_minutes,omitempty"`
}

// Service 源内容接入服务。三种入口（文本、文档、音频）
// 统一做规范化与最小长度校验，音频入口受音频配额门禁约束。
type Service struct {
	extractor TextExtractor
	stt       SpeechToText
	quota     *plan.QuotaService
	audioRepo repository.AudioUsageRepository
}

// NewService 创建接入服务
func NewService(extractor TextExtractor, stt SpeechToText, quota *plan.QuotaService, audioRepo repository.AudioUsageRepository) *Service {
	return &Service{
		extractor: extractor,
		stt:       stt,
		quota:     quota,
		audioRepo: audioRepo,
	}
}

// FromText 文本直传入口
func (s *Service) FromText(ctx context.Context, text string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "intake.Service.FromText")
	defer span.End()

	normalized := NormalizeTranscript(text)
	if err := requireViable(normalized); err != nil {
		return nil, err
	}
	return &Result{Text: normalized}, nil
}

// FromDocument 文档上传入口：抽取纯文本后规范化
func (s *Service) FromDocument(ctx context.Context, r io.Reader, contentType string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "intake.Service.FromDocument")
	defer span.End()

	if s.extractor == nil {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "document extraction is not configured")
	}

	extracted, err := s.extractor.Extract(ctx, r, contentType)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "document extraction failed")
	}

	normalized := NormalizeTranscript(extracted.Text)
	if err := requireViable(normalized); err != nil {
		return nil, err
	}
	return &Result{Text: normalized, Truncated: extracted.Truncated}, nil
}

// FromAudio 音频上传入口。配额门禁先行，转写成功后才记账；
// 用量记账失败不回滚转写结果，仅记录日志。
func (s *Service) FromAudio(ctx context.Context, userID, projectID string, r io.Reader, filename string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "intake.Service.FromAudio")
	defer span.End()

	if s.stt == nil {
		return nil, apperrors.New(apperrors.CodeServiceUnavailable, "speech-to-text is not configured")
	}

	if err := s.quota.RequireAudioQuota(ctx, userID); err != nil {
		return nil, err
	}

	transcript, err := s.stt.Transcribe(ctx, r, filename)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeTranscribeError, "audio transcription failed")
	}

	normalized := NormalizeTranscript(transcript.Text)
	if err := requireViable(normalized); err != nil {
		return nil, err
	}

	minutes := transcript.DurationSeconds / 60
	if minutes > 0 {
		usage := &entity.AudioUsage{
			UserID:    userID,
			ProjectID: projectID,
			Minutes:   minutes,
		}
		if err := s.audioRepo.Record(ctx, usage); err != nil {
			logger.Warn(ctx, "failed to record audio usage",
				"user_id", userID, "minutes", minutes, "error", err.Error())
		}
	}

	return &Result{
		Text:         normalized,
		Language:     transcript.Language,
		AudioMinutes: minutes,
	}, nil
}

func requireViable(normalized string) error {
	if len([]rune(normalized)) < minViableLength {
		return apperrors.ErrInsufficientContent.WithDetail("content must be at least 10 characters")
	}
	return nil
}
