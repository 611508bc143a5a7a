package entity

import "strings"

// Platform 目标内容平台标识
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformEmail     Platform = "email"
	PlatformBlog      Platform = "blog"
)

// SupportedPlatforms 所有受支持的平台（有对应提示词模板）
var SupportedPlatforms = []Platform{
	PlatformLinkedIn,
	PlatformTwitter,
	PlatformInstagram,
	PlatformFacebook,
	PlatformEmail,
	PlatformBlog,
}

// NormalizePlatform 规范化平台标识（大小写不敏感）
// 返回规范化后的平台与是否受支持。
func NormalizePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SupportedPlatforms {
		if p == known {
			return p, true
		}
	}
	return p, false
}
