package dto

import (
	"repurpose-ai-api/internal/application/intake"
)

// TextIntakeRequest 文本直传请求
type TextIntakeRequest struct {
	Text string `json:"text" binding:"required,max=500000"`
}

// IntakeResponse 接入结果响应
type IntakeResponse struct {
	Text         string  `json:"text"`
	Truncated    bool    `json:"truncated,omitempty"`
	Language     string  `json:"language,omitempty"`
	AudioMinutes float64 `json:"audio_minutes,omitempty"`
}

// ToIntakeResponse 接入结果转响应
func ToIntakeResponse(r *intake.Result) *IntakeResponse {
	return &IntakeResponse{
		Text:         r.Text,
		Truncated:    r.Truncated,
		Language:     r.Language,
		AudioMinutes: r.AudioMinutes,
	}
}
