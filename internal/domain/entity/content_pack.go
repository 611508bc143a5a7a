package entity

import (
	"strings"
)

// ContentPack 源内容的结构化摘要。派生产物，不落库，
// 仅经由缓存复用；任何必填字段缺失即视为无效，整体丢弃。
type ContentPack struct {
	SummaryShort    string   `json:"summary_short"`
	SummaryLong     string   `json:"summary_long"`
	KeyPoints       []string `json:"key_points"`
	Audience        string   `json:"audience"`
	ToneSuggestions []string `json:"tone_suggestions,omitempty"`
	Quotes          []string `json:"quotes"`
	CTAOptions      []string `json:"cta_options"`
}

// MissingFields 返回缺失的必填字段名
func (p *ContentPack) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(p.SummaryShort) == "" {
		missing = append(missing, "summary_short")
	}
	if strings.TrimSpace(p.SummaryLong) == "" {
		missing = append(missing, "summary_long")
	}
	if len(p.KeyPoints) == 0 {
		missing = append(missing, "key_points")
	}
	if strings.TrimSpace(p.Audience) == "" {
		missing = append(missing, "audience")
	}
	if len(p.Quotes) == 0 {
		missing = append(missing, "quotes")
	}
	if len(p.CTAOptions) == 0 {
		missing = append(missing, "cta_options")
	}
	return missing
}

// Condensed 返回喂给平台提示词的压缩文本表示
func (p *ContentPack) Condensed() string {
	var b strings.Builder
	b.WriteString("Summary: ")
	b.WriteString(p.SummaryLong)
	b.WriteString("\nKey points:\n")
	for _, kp := range p.KeyPoints {
		b.WriteString("- ")
		b.WriteString(kp)
		b.WriteString("\n")
	}
	b.WriteString("Audience: ")
	b.WriteString(p.Audience)
	if len(p.Quotes) > 0 {
		b.WriteString("\nQuotes:\n")
		for _, q := range p.Quotes {
			b.WriteString("- ")
			b.WriteString(q)
			b.WriteString("\n")
		}
	}
	if len(p.CTAOptions) > 0 {
		b.WriteString("Call-to-action options:\n")
		for _, cta := range p.CTAOptions {
			b.WriteString("- ")
			b.WriteString(cta)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
