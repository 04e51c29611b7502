// Package exchange converts profiles to and from the payloads carried over
// NFC and QR. It performs no I/O.
package exchange

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
)

const (
	DefaultScheme = "tapcard"
	DefaultHost   = "connect"
	DefaultAppID  = "com.tapcard.app"

	dataParam = "data"
)

// Codec encodes and decodes exchange payloads for one application id.
type Codec struct {
	scheme string
	host   string
	appID  string
	now    func() time.Time
}

func NewCodec(scheme, host, appID string) *Codec {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if host == "" {
		host = DefaultHost
	}
	if appID == "" {
		appID = DefaultAppID
	}
	return &Codec{
		scheme: scheme,
		host:   host,
		appID:  appID,
		now:    time.Now,
	}
}

type wireLink struct {
	Platform  string `json:"platform"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	IsVisible bool   `json:"isVisible"`
	SortOrder int    `json:"sortOrder"`
}

type wireProfile struct {
	App         string     `json:"app"`
	ID          string     `json:"id"`
	CreatedAt   int64      `json:"createdAt"`
	LastSeen    int64      `json:"lastSeen"`
	FullName    string     `json:"fullName"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	SocialLinks []wireLink `json:"socialLinks"`
	Timestamp   int64      `json:"timestamp"`
}

// EncodeJSON returns the raw UTF-8 JSON written to an NFC tag.
func (c *Codec) EncodeJSON(p *domain.Profile) ([]byte, error) {
	w := wireProfile{
		App:         c.appID,
		ID:          p.ID,
		CreatedAt:   toMillis(p.CreatedAt),
		LastSeen:    toMillis(p.LastSeen),
		FullName:    p.FullName,
		Phone:       p.Phone,
		Email:       p.Email,
		Description: p.Description,
		Location:    p.Location,
		SocialLinks: make([]wireLink, 0, len(p.SocialLinks)),
		Timestamp:   c.now().UnixMilli(),
	}
	for _, l := range p.SocialLinks {
		w.SocialLinks = append(w.SocialLinks, wireLink{
			Platform:  string(l.Platform),
			Label:     l.Label,
			URL:       l.URL,
			IsVisible: l.IsVisible,
			SortOrder: l.SortOrder,
		})
	}
	return json.Marshal(w)
}

// EncodeURI returns the deep link rendered into a QR code.
func (c *Codec) EncodeURI(p *domain.Profile) (string, error) {
	raw, err := c.EncodeJSON(p)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set(dataParam, base64.RawURLEncoding.EncodeToString(raw))
	u := url.URL{Scheme: c.scheme, Host: c.host, RawQuery: q.Encode()}
	return u.String(), nil
}

// Decode accepts either a deep link or raw JSON.
func (c *Codec) Decode(payload string) (*domain.Profile, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, newDecodeError(ReasonMissingPayload, nil)
	}
	if strings.HasPrefix(trimmed, "{") {
		return c.DecodeJSON([]byte(trimmed))
	}
	return c.DecodeURI(trimmed)
}

// DecodeURI extracts the data parameter of a deep link and decodes it.
func (c *Codec) DecodeURI(uri string) (*domain.Profile, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, newDecodeError(ReasonInvalidURI, err)
	}
	if u.Scheme == "" {
		return nil, newDecodeError(ReasonInvalidURI, nil)
	}
	data, err := rawQueryParam(u.RawQuery, dataParam)
	if err != nil {
		return nil, newDecodeError(ReasonInvalidURI, err)
	}
	if data == "" {
		return nil, newDecodeError(ReasonMissingPayload, nil)
	}
	raw, err := decodeBase64(data)
	if err != nil {
		return nil, newDecodeError(ReasonInvalidBase64, err)
	}
	return c.DecodeJSON(raw)
}

// DecodeJSON parses raw payload JSON as read from an NFC tag.
func (c *Codec) DecodeJSON(raw []byte) (*domain.Profile, error) {
	if len(raw) == 0 {
		return nil, newDecodeError(ReasonMissingPayload, nil)
	}
	var w wireProfile
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, newDecodeError(ReasonInvalidJSON, err)
	}
	if w.App != c.appID {
		return nil, newDecodeError(ReasonForeignPayload, nil)
	}
	if strings.TrimSpace(w.ID) == "" {
		return nil, newDecodeError(ReasonMissingID, nil)
	}

	p := &domain.Profile{
		ID:          w.ID,
		CreatedAt:   fromMillis(w.CreatedAt),
		LastSeen:    fromMillis(w.LastSeen),
		FullName:    w.FullName,
		Phone:       w.Phone,
		Email:       w.Email,
		Description: w.Description,
		Location:    w.Location,
	}
	for _, l := range w.SocialLinks {
		p.SocialLinks = append(p.SocialLinks, domain.SocialLink{
			Platform:  domain.SocialPlatform(l.Platform),
			Label:     l.Label,
			URL:       l.URL,
			IsVisible: l.IsVisible,
			SortOrder: l.SortOrder,
		})
	}
	return p, nil
}

// rawQueryParam returns the first value of name without form decoding, so
// a standard-alphabet '+' survives instead of turning into a space.
func rawQueryParam(rawQuery, name string) (string, error) {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if k != name {
			continue
		}
		return url.PathUnescape(v)
	}
	return "", nil
}

// decodeBase64 accepts both alphabets, with or without padding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.NewReplacer("+", "-", "/", "_").Replace(s)
	s = strings.TrimRight(s, "=")
	return base64.RawURLEncoding.DecodeString(s)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
