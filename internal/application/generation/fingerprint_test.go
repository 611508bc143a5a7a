package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"repurpose-ai-api/internal/domain/entity"
)

func baseFingerprintInput() FingerprintInput {
	return FingerprintInput{
		SourceContent: "the quick brown fox",
		Platform:      entity.PlatformLinkedIn,
		Model:         "gpt-4o",
		Temperature:   0.7,
		MaxTokens:     2048,
		SeriesIndex:   1,
		SeriesTotal:   1,
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(baseFingerprintInput())
	b := Fingerprint(baseFingerprintInput())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintIgnoresWhitespaceNoise(t *testing.T) {
	a := Fingerprint(baseFingerprintInput())

	in := baseFingerprintInput()
	in.SourceContent = "  the   quick\nbrown\t fox  "
	assert.Equal(t, a, Fingerprint(in))
}

func TestFingerprintDivergesPerDimension(t *testing.T) {
	base := Fingerprint(baseFingerprintInput())

	mutations := map[string]func(*FingerprintInput){
		"source":      func(in *FingerprintInput) { in.SourceContent = "something else" },
		"platform":    func(in *FingerprintInput) { in.Platform = entity.PlatformTwitter },
		"model":       func(in *FingerprintInput) { in.Model = "gpt-4o-mini" },
		"temperature": func(in *FingerprintInput) { in.Temperature = 0.9 },
		"max tokens":  func(in *FingerprintInput) { in.MaxTokens = 1024 },
		"series index": func(in *FingerprintInput) {
			in.SeriesIndex = 2
			in.SeriesTotal = 3
		},
		"brand voice id": func(in *FingerprintInput) { in.BrandVoiceID = "bv-1" },
		"brand voice updated": func(in *FingerprintInput) {
			in.BrandVoiceID = "bv-1"
			in.BrandVoiceUpdated = time.Unix(1700000000, 0)
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := baseFingerprintInput()
			mutate(&in)
			assert.NotEqual(t, base, Fingerprint(in))
		})
	}
}

func TestFingerprintSeriesPartsDiffer(t *testing.T) {
	first := baseFingerprintInput()
	first.SeriesIndex = 1
	first.SeriesTotal = 3

	second := first
	second.SeriesIndex = 2

	assert.NotEqual(t, Fingerprint(first), Fingerprint(second))
}
