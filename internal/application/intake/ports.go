// Package intake 提供源内容接入：文本直传、文档抽取与音频转写
package intake

import (
	"context"
	"io"
)

// ExtractedText 文档抽取结果
type ExtractedText struct {
	Text string
	// Truncated 超出抽取上限被截断时为 true
	Truncated bool
}

// TextExtractor 文档文本抽取端口（pdf、docx 等）
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader, contentType string) (*ExtractedText, error)
}

// Transcript 音频转写结果
type Transcript struct {
	Text            string
	Language        string
	DurationSeconds float64
}

// SpeechToText 音频转写端口
type SpeechToText interface {
	Transcribe(ctx context.Context, r io.Reader, filename string) (*Transcript, error)
}
