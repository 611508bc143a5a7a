// Package extract 提供文档文本抽取实现
package extract

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"repurpose-ai-api/internal/application/intake"
	apperrors "repurpose-ai-api/pkg/errors"
)

// maxExtractBytes 抽取读取上限，超出部分丢弃并标记截断
const maxExtractBytes = 2 << 20

// PlainTextExtractor 纯文本/Markdown 抽取器。
// 二进制格式（pdf、docx）需要外部抽取服务，不在此实现。
type PlainTextExtractor struct{}

// NewPlainTextExtractor 创建纯文本抽取器
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract 读取纯文本内容，超出上限截断
func (e *PlainTextExtractor) Extract(ctx context.Context, r io.Reader, contentType string) (*intake.ExtractedText, error) {
	if !supportedContentType(contentType) {
		return nil, apperrors.Newf(apperrors.CodeInvalidParam, "unsupported document type: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxExtractBytes+1))
	if err != nil {
		return nil, err
	}

	truncated := false
	if len(data) > maxExtractBytes {
		data = data[:maxExtractBytes]
		// 截断点可能落在多字节字符中间，回退到完整边界
		for len(data) > 0 && !utf8.Valid(data) {
			data = data[:len(data)-1]
		}
		truncated = true
	}

	if !utf8.Valid(data) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "document is not valid utf-8 text")
	}

	return &intake.ExtractedText{
		Text:      string(data),
		Truncated: truncated,
	}, nil
}

func supportedContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "", "text/plain", "text/markdown", "application/octet-stream":
		return true
	}
	return strings.HasPrefix(ct, "text/")
}
