package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normalized", in: "a b c", want: "a b c"},
		{name: "collapses runs and newlines", in: "  a  b  \n\n  c  ", want: "a b c"},
		{name: "tabs and crlf", in: "a\tb\r\nc", want: "a b c"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWhitespace(tt.in))
		})
	}
}

func TestSourceDigest(t *testing.T) {
	base := SourceDigest("hello world")

	// 空白差异不影响摘要
	assert.Equal(t, base, SourceDigest("  hello \n world  "))
	assert.Equal(t, base, SourceDigest("hello\tworld"))

	// 内容差异改变摘要
	assert.NotEqual(t, base, SourceDigest("hello worlds"))

	// sha256 hex 长度固定
	assert.Len(t, base, 64)
}
