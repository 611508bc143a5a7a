package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"repurpose-ai-api/internal/domain/entity"
	apperrors "repurpose-ai-api/pkg/errors"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptLinkedInPostV1     PromptID = "linkedin_post_v1"
	PromptTwitterThreadV1    PromptID = "twitter_thread_v1"
	PromptInstagramCaptionV1 PromptID = "instagram_caption_v1"
	PromptFacebookPostV1     PromptID = "facebook_post_v1"
	PromptEmailNewsletterV1  PromptID = "email_newsletter_v1"
	PromptBlogArticleV1      PromptID = "blog_article_v1"
	PromptContentPackV1      PromptID = "content_pack_v1"
)

// PromptForPlatform 解析平台对应的提示词模板（大小写不敏感）。
// 不支持的平台返回 UnsupportedPlatform 错误并指明取值。
func PromptForPlatform(platform string) (PromptID, error) {
	p, ok := entity.NormalizePlatform(platform)
	if !ok {
		return "", apperrors.Newf(apperrors.CodeUnsupportedPlatform, "unsupported platform: %s", platform)
	}

	switch p {
	case entity.PlatformLinkedIn:
		return PromptLinkedInPostV1, nil
	case entity.PlatformTwitter:
		return PromptTwitterThreadV1, nil
	case entity.PlatformInstagram:
		return PromptInstagramCaptionV1, nil
	case entity.PlatformFacebook:
		return PromptFacebookPostV1, nil
	case entity.PlatformEmail:
		return PromptEmailNewsletterV1, nil
	case entity.PlatformBlog:
		return PromptBlogArticleV1, nil
	default:
		return "", apperrors.Newf(apperrors.CodeUnsupportedPlatform, "unsupported platform: %s", platform)
	}
}

// SeriesRole 系列中单篇的框架角色
type SeriesRole string

const (
	SeriesRoleNone       SeriesRole = ""
	SeriesRoleTeaser     SeriesRole = "teaser"
	SeriesRoleContext    SeriesRole = "context"
	SeriesRoleConclusion SeriesRole = "conclusion"
)

// RoleForSeries 按 (index, total) 计算系列角色。
// 单篇请求无角色；两篇系列只有 teaser 和 conclusion；
// 更长的系列首篇 teaser、末篇 conclusion、其余 context。
func RoleForSeries(index, total int) SeriesRole {
	if total <= 1 {
		return SeriesRoleNone
	}
	switch {
	case index <= 1:
		return SeriesRoleTeaser
	case index >= total:
		return SeriesRoleConclusion
	default:
		return SeriesRoleContext
	}
}

// SeriesInstruction 生成注入模板的系列角色指令块；无角色时为空串
func SeriesInstruction(index, total int) string {
	switch RoleForSeries(index, total) {
	case SeriesRoleTeaser:
		return fmt.Sprintf("This is post %d of a %d-post series. Role: TEASER. Build intrigue around the core idea without giving away the payoff. End on an open question or promise of what's coming.", index, total)
	case SeriesRoleContext:
		return fmt.Sprintf("This is post %d of a %d-post series. Role: CONTEXT. Deepen the core idea with detail and evidence, but do not resolve it. Assume the reader saw the opening post.", index, total)
	case SeriesRoleConclusion:
		return fmt.Sprintf("This is post %d of a %d-post series. Role: CONCLUSION. Deliver the full payoff promised by the series and close with a clear call to action.", index, total)
	default:
		return ""
	}
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptLinkedInPostV1, PromptTwitterThreadV1, PromptInstagramCaptionV1,
		PromptFacebookPostV1, PromptEmailNewsletterV1, PromptBlogArticleV1,
		PromptContentPackV1:
		return fmt.Sprintf("templates/%s.system.txt", id), fmt.Sprintf("templates/%s.user.txt", id), nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
