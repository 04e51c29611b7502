package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateURL(t *testing.T) {
	tests := []struct {
		platform SocialPlatform
		input    string
		want     string
	}{
		{PlatformInstagram, "@bob", "https://instagram.com/bob"},
		{PlatformInstagram, "  bob  ", "https://instagram.com/bob"},
		{PlatformTwitter, "@bob", "https://twitter.com/bob"},
		{PlatformLinkedIn, "bob-smith", "https://linkedin.com/in/bob-smith"},
		{PlatformTikTok, "@bob", "https://tiktok.com/@bob"},
		{PlatformWhatsApp, "+1 (555) 123-4567", "https://wa.me/15551234567"},
		{PlatformPhone, "+1 555 123 4567", "tel:+15551234567"},
		{PlatformEmail, "bob@example.com", "mailto:bob@example.com"},
		{PlatformWebsite, "example.com", "https://example.com"},
		{PlatformCustom, "https://bob.dev/cv", "https://bob.dev/cv"},
		{PlatformInstagram, "https://instagram.com/already", "https://instagram.com/already"},
		{PlatformEmail, "mailto:bob@example.com", "mailto:bob@example.com"},
		{PlatformGitHub, "", ""},
		{SocialPlatform("MYSPACE"), "bob", "bob"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform)+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateURL(tt.platform, tt.input))
		})
	}
}

func TestPlatformsAreAllValid(t *testing.T) {
	seen := map[SocialPlatform]bool{}
	for _, p := range Platforms() {
		assert.True(t, p.IsValid(), p)
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, len(platforms))
	assert.False(t, SocialPlatform("instagram").IsValid())
}

func TestNormalizeLinks(t *testing.T) {
	links := NormalizeLinks([]SocialLink{
		{Platform: PlatformGitHub, Label: "ignored", URL: "@bob", SortOrder: 7},
		{Platform: PlatformCustom, URL: "https://bob.dev"},
		{Platform: PlatformCustom, Label: "Blog", URL: "https://blog.bob.dev"},
		{Platform: PlatformGitHub, URL: "bob2"},
	})

	require.Len(t, links, 4)
	assert.Equal(t, SocialLink{Platform: PlatformGitHub, Label: "GitHub", URL: "https://github.com/bob", SortOrder: 0}, links[0])
	assert.Equal(t, "Link", links[1].Label)
	assert.Equal(t, "Blog", links[2].Label)
	assert.Equal(t, 3, links[3].SortOrder)

	assert.Nil(t, NormalizeLinks(nil))
}

func TestSocialLinksScan(t *testing.T) {
	var links SocialLinks
	require.NoError(t, links.Scan([]byte(`[{"platform":"EMAIL","label":"Email","url":"mailto:a@b.c","is_visible":true,"sort_order":0}]`)))
	require.Len(t, links, 1)
	assert.Equal(t, PlatformEmail, links[0].Platform)

	require.NoError(t, links.Scan("[]"))
	assert.Nil(t, links)

	require.NoError(t, links.Scan(nil))
	assert.Nil(t, links)

	assert.Error(t, links.Scan(42))

	v, err := SocialLinks(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
