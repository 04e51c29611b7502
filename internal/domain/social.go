package domain

import (
	"strings"
	"unicode"
)

type SocialPlatform string

const (
	PlatformInstagram SocialPlatform = "INSTAGRAM"
	PlatformTwitter   SocialPlatform = "TWITTER"
	PlatformLinkedIn  SocialPlatform = "LINKEDIN"
	PlatformFacebook  SocialPlatform = "FACEBOOK"
	PlatformGitHub    SocialPlatform = "GITHUB"
	PlatformTikTok    SocialPlatform = "TIKTOK"
	PlatformYouTube   SocialPlatform = "YOUTUBE"
	PlatformTelegram  SocialPlatform = "TELEGRAM"
	PlatformWhatsApp  SocialPlatform = "WHATSAPP"
	PlatformSnapchat  SocialPlatform = "SNAPCHAT"
	PlatformWebsite   SocialPlatform = "WEBSITE"
	PlatformEmail     SocialPlatform = "EMAIL"
	PlatformPhone     SocialPlatform = "PHONE"
	PlatformCustom    SocialPlatform = "CUSTOM"
)

// PlatformInfo describes how a platform turns a handle into a link.
type PlatformInfo struct {
	Label       string
	URLPrefix   string
	Placeholder string
	StripAt     bool
}

var platforms = map[SocialPlatform]PlatformInfo{
	PlatformInstagram: {Label: "Instagram", URLPrefix: "https://instagram.com/", Placeholder: "@username", StripAt: true},
	PlatformTwitter:   {Label: "Twitter", URLPrefix: "https://twitter.com/", Placeholder: "@username", StripAt: true},
	PlatformLinkedIn:  {Label: "LinkedIn", URLPrefix: "https://linkedin.com/in/", Placeholder: "profile-name"},
	PlatformFacebook:  {Label: "Facebook", URLPrefix: "https://facebook.com/", Placeholder: "username"},
	PlatformGitHub:    {Label: "GitHub", URLPrefix: "https://github.com/", Placeholder: "username", StripAt: true},
	PlatformTikTok:    {Label: "TikTok", URLPrefix: "https://tiktok.com/@", Placeholder: "@username", StripAt: true},
	PlatformYouTube:   {Label: "YouTube", URLPrefix: "https://youtube.com/@", Placeholder: "@channel", StripAt: true},
	PlatformTelegram:  {Label: "Telegram", URLPrefix: "https://t.me/", Placeholder: "@username", StripAt: true},
	PlatformWhatsApp:  {Label: "WhatsApp", URLPrefix: "https://wa.me/", Placeholder: "+1 555 123 4567"},
	PlatformSnapchat:  {Label: "Snapchat", URLPrefix: "https://snapchat.com/add/", Placeholder: "@username", StripAt: true},
	PlatformWebsite:   {Label: "Website", URLPrefix: "https://", Placeholder: "example.com"},
	PlatformEmail:     {Label: "Email", URLPrefix: "mailto:", Placeholder: "name@example.com"},
	PlatformPhone:     {Label: "Phone", URLPrefix: "tel:", Placeholder: "+1 555 123 4567"},
	PlatformCustom:    {Label: "Link", URLPrefix: "https://", Placeholder: "https://"},
}

// Platforms returns the supported platforms in display order.
func Platforms() []SocialPlatform {
	return []SocialPlatform{
		PlatformInstagram, PlatformTwitter, PlatformLinkedIn, PlatformFacebook,
		PlatformGitHub, PlatformTikTok, PlatformYouTube, PlatformTelegram,
		PlatformWhatsApp, PlatformSnapchat, PlatformWebsite, PlatformEmail,
		PlatformPhone, PlatformCustom,
	}
}

func (p SocialPlatform) IsValid() bool {
	_, ok := platforms[p]
	return ok
}

func (p SocialPlatform) Info() (PlatformInfo, bool) {
	info, ok := platforms[p]
	return info, ok
}

type SocialLink struct {
	Platform  SocialPlatform `json:"platform"`
	Label     string         `json:"label"`
	URL       string         `json:"url"`
	IsVisible bool           `json:"is_visible"`
	SortOrder int            `json:"sort_order"`
}

// GenerateURL builds the link target for a handle entered by the user.
// Inputs that already carry a scheme are returned unchanged.
func GenerateURL(platform SocialPlatform, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if hasScheme(input) {
		return input
	}

	info, ok := platforms[platform]
	if !ok {
		return input
	}

	handle := input
	if info.StripAt {
		handle = strings.TrimPrefix(handle, "@")
	}

	switch platform {
	case PlatformWhatsApp:
		handle = digitsOnly(handle)
	case PlatformPhone:
		handle = strings.ReplaceAll(handle, " ", "")
	}

	return info.URLPrefix + handle
}

func hasScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize fills in the derived label for non-custom platforms.
func (l SocialLink) Normalize() SocialLink {
	if l.Platform == PlatformCustom {
		if strings.TrimSpace(l.Label) == "" {
			l.Label = platforms[PlatformCustom].Label
		}
		return l
	}
	if info, ok := platforms[l.Platform]; ok {
		l.Label = info.Label
	}
	return l
}

// NormalizeLinks derives labels and URLs and renumbers sort orders,
// keeping the caller's ordering. Duplicates are allowed.
func NormalizeLinks(links []SocialLink) SocialLinks {
	if len(links) == 0 {
		return nil
	}
	out := make(SocialLinks, 0, len(links))
	for i, l := range links {
		l = l.Normalize()
		l.URL = GenerateURL(l.Platform, l.URL)
		l.SortOrder = i
		out = append(out, l)
	}
	return out
}
