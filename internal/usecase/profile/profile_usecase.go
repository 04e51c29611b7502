package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/events"
	"github.com/gdugdh24/tapcard-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
)

// Encoder produces the QR and NFC forms of a profile.
type Encoder interface {
	EncodeURI(p *domain.Profile) (string, error)
	EncodeJSON(p *domain.Profile) ([]byte, error)
}

// BioWriter suggests profile descriptions. Optional.
type BioWriter interface {
	GenerateBio(ctx context.Context, fullName, location string, platforms []string) (string, error)
}

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
	encoder     Encoder
	bioWriter   BioWriter
	publisher   events.Publisher
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	encoder Encoder,
	bioWriter BioWriter,
	publisher events.Publisher,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		encoder:     encoder,
		bioWriter:   bioWriter,
		publisher:   publisher,
	}
}

// SocialLinkInput is a link as entered by the user. URL may be a bare
// handle; it is expanded with the platform's prefix.
type SocialLinkInput struct {
	Platform  domain.SocialPlatform `json:"platform" binding:"required,social_platform"`
	Label     string                `json:"label" binding:"omitempty,max=50"`
	URL       string                `json:"url" binding:"required,max=500"`
	IsVisible *bool                 `json:"is_visible"`
}

// CreateProfileRequest represents profile creation request
type CreateProfileRequest struct {
	FullName    string            `json:"full_name" binding:"required,min=1,max=100"`
	Phone       string            `json:"phone" binding:"omitempty,max=32"`
	Email       string            `json:"email" binding:"omitempty,email,max=255"`
	Description string            `json:"description" binding:"omitempty,max=500"`
	Location    string            `json:"location" binding:"omitempty,max=100"`
	SocialLinks []SocialLinkInput `json:"social_links" binding:"omitempty,max=30,dive"`
}

// UpdateProfileRequest represents profile update request
type UpdateProfileRequest struct {
	FullName    *string            `json:"full_name" binding:"omitempty,min=1,max=100"`
	Phone       *string            `json:"phone" binding:"omitempty,max=32"`
	Email       *string            `json:"email" binding:"omitempty,max=255"`
	Description *string            `json:"description" binding:"omitempty,max=500"`
	Location    *string            `json:"location" binding:"omitempty,max=100"`
	SocialLinks *[]SocialLinkInput `json:"social_links" binding:"omitempty,max=30,dive"`
}

// SharePayload holds both exchange forms of the caller's profile.
type SharePayload struct {
	URI        string `json:"uri"`
	NFCPayload string `json:"nfc_payload"`
}

// PlatformResponse describes one selectable platform for link editors.
type PlatformResponse struct {
	Platform    domain.SocialPlatform `json:"platform"`
	Label       string                `json:"label"`
	URLPrefix   string                `json:"url_prefix"`
	Placeholder string                `json:"placeholder"`
}

func toLinks(in []SocialLinkInput) (domain.SocialLinks, error) {
	links := make([]domain.SocialLink, 0, len(in))
	for _, l := range in {
		if !l.Platform.IsValid() {
			return nil, fmt.Errorf("%w: unknown platform %q", domain.ErrInvalidInput, l.Platform)
		}
		visible := true
		if l.IsVisible != nil {
			visible = *l.IsVisible
		}
		links = append(links, domain.SocialLink{
			Platform:  l.Platform,
			Label:     strings.TrimSpace(l.Label),
			URL:       l.URL,
			IsVisible: visible,
		})
	}
	return domain.NormalizeLinks(links), nil
}

// GetMyProfile returns current user's profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

// GetProfile returns another user's profile by id
func (uc *ProfileUseCase) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, id)
}

// CreateProfile creates the user's profile. A user has at most one.
func (uc *ProfileUseCase) CreateProfile(ctx context.Context, userID string, req *CreateProfileRequest) (*domain.Profile, error) {
	links, err := toLinks(req.SocialLinks)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:          userID,
		FullName:    strings.TrimSpace(req.FullName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		SocialLinks: links,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrProfileAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.publish(profile)
	return profile, nil
}

// UpdateProfile applies a partial update. Links, when given, replace the
// whole list.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		profile.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		profile.Email = strings.TrimSpace(*req.Email)
	}
	if req.Description != nil {
		profile.Description = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil {
		profile.Location = strings.TrimSpace(*req.Location)
	}
	if req.SocialLinks != nil {
		links, err := toLinks(*req.SocialLinks)
		if err != nil {
			return nil, err
		}
		profile.SocialLinks = links
	}

	if profile.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	uc.publish(profile)
	return profile, nil
}

func (uc *ProfileUseCase) TouchLastSeen(ctx context.Context, userID string) error {
	return uc.profileRepo.TouchLastSeen(ctx, userID)
}

// Share encodes the caller's profile for QR display and NFC writes.
func (uc *ProfileUseCase) Share(ctx context.Context, userID string) (*SharePayload, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// hidden links stay off the wire
	shared := *profile
	shared.SocialLinks = nil
	for _, l := range profile.SocialLinks {
		if l.IsVisible {
			shared.SocialLinks = append(shared.SocialLinks, l)
		}
	}

	uri, err := uc.encoder.EncodeURI(&shared)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	raw, err := uc.encoder.EncodeJSON(&shared)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return &SharePayload{URI: uri, NFCPayload: string(raw)}, nil
}

// SuggestBio drafts a description from the profile.
func (uc *ProfileUseCase) SuggestBio(ctx context.Context, userID string) (string, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if uc.bioWriter == nil {
		return gemini.FallbackBio(profile.FullName, profile.Location), nil
	}

	var labels []string
	for _, l := range profile.SocialLinks {
		labels = append(labels, l.Label)
	}
	bio, err := uc.bioWriter.GenerateBio(ctx, profile.FullName, profile.Location, labels)
	if err != nil || bio == "" {
		return gemini.FallbackBio(profile.FullName, profile.Location), nil
	}
	return bio, nil
}

// Platforms lists the supported social platforms in display order.
func (uc *ProfileUseCase) Platforms() []PlatformResponse {
	out := make([]PlatformResponse, 0, len(domain.Platforms()))
	for _, p := range domain.Platforms() {
		info, _ := p.Info()
		out = append(out, PlatformResponse{
			Platform:    p,
			Label:       info.Label,
			URLPrefix:   info.URLPrefix,
			Placeholder: info.Placeholder,
		})
	}
	return out
}

func (uc *ProfileUseCase) publish(p *domain.Profile) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Publish(events.Event{
		Type:   events.ProfileUpdated,
		UserID: p.ID,
		Data:   p,
		At:     time.Now().UTC(),
	})
}
