package generation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"repurpose-ai-api/internal/domain/entity"
	"repurpose-ai-api/pkg/utils"
)

// FingerprintInput 缓存指纹的全部输入维度。
// 任一维度变化都会产生不同指纹，从而自然绕过旧缓存。
type FingerprintInput struct {
	SourceContent     string
	Platform          entity.Platform
	Model             string
	Temperature       float64
	MaxTokens         int
	SeriesIndex       int
	SeriesTotal       int
	BrandVoiceID      string
	BrandVoiceUpdated time.Time
}

// Fingerprint 计算生成请求的确定性指纹（sha256 hex）。
// 源内容先做空白规范化，使无意义的空白差异命中同一条缓存。
func Fingerprint(in FingerprintInput) string {
	var bvUpdated int64
	if !in.BrandVoiceUpdated.IsZero() {
		bvUpdated = in.BrandVoiceUpdated.Unix()
	}

	payload := strings.Join([]string{
		utils.NormalizeWhitespace(in.SourceContent),
		string(in.Platform),
		in.Model,
		fmt.Sprintf("%.2f", in.Temperature),
		fmt.Sprintf("%d", in.MaxTokens),
		fmt.Sprintf("%d/%d", in.SeriesIndex, in.SeriesTotal),
		in.BrandVoiceID,
		fmt.Sprintf("%d", bvUpdated),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
