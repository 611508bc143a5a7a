package intake

import (
	"repurpose-ai-api/pkg/utils"
)

// NormalizeTranscript 规范化转写/抽取文本：
// 所有连续空白（含空行）压缩为单个空格，去除首尾空白。
func NormalizeTranscript(s string) string {
	return utils.NormalizeWhitespace(s)
}
