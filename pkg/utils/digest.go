package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeWhitespace 将连续空白压缩为单个空格并去除首尾空白
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SourceDigest 源内容的 sha256 摘要（hex）。
// 先做空白规范化，使无意义的空白差异得到同一摘要。
func SourceDigest(source string) string {
	sum := sha256.Sum256([]byte(NormalizeWhitespace(source)))
	return hex.EncodeToString(sum[:])
}
