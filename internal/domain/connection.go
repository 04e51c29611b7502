package domain

import (
	"math"
	"strings"
	"time"
)

type ConnectionMethod string

const (
	MethodNFC ConnectionMethod = "NFC"
	MethodQR  ConnectionMethod = "QR"
)

func (m ConnectionMethod) IsValid() bool {
	return m == MethodNFC || m == MethodQR
}

// Connection is one user's record of a completed exchange. The
// ConnectedUser* fields are a snapshot of the counterpart's profile taken at
// exchange time and only change on an explicit refresh.
type Connection struct {
	ID                       string           `json:"id" db:"id"`
	UserID                   string           `json:"user_id" db:"user_id"`
	ConnectedUserID          string           `json:"connected_user_id" db:"connected_user_id"`
	ConnectedUserName        string           `json:"connected_user_name" db:"connected_user_name"`
	ConnectedUserPhone       string           `json:"connected_user_phone" db:"connected_user_phone"`
	ConnectedUserEmail       string           `json:"connected_user_email" db:"connected_user_email"`
	ConnectedUserDescription string           `json:"connected_user_description" db:"connected_user_description"`
	ConnectedUserLocation    string           `json:"connected_user_location" db:"connected_user_location"`
	ConnectedUserSocialLinks SocialLinks      `json:"connected_user_social_links" db:"connected_user_social_links"`
	Timestamp                int64            `json:"timestamp" db:"timestamp"`
	CreatedAt                time.Time        `json:"created_at" db:"created_at"`
	ConnectionMethod         ConnectionMethod `json:"connection_method" db:"connection_method"`
	EventName                string           `json:"event_name" db:"event_name"`
	EventLocation            string           `json:"event_location" db:"event_location"`
	Latitude                 float64          `json:"latitude" db:"latitude"`
	Longitude                float64          `json:"longitude" db:"longitude"`
	Notes                    string           `json:"notes" db:"notes"`
}

// ProfileSnapshot is the denormalized counterpart data held by a Connection.
type ProfileSnapshot struct {
	Name        string
	Phone       string
	Email       string
	Description string
	Location    string
	SocialLinks SocialLinks
}

func SnapshotOf(p *Profile) ProfileSnapshot {
	return ProfileSnapshot{
		Name:        p.FullName,
		Phone:       p.Phone,
		Email:       p.Email,
		Description: p.Description,
		Location:    p.Location,
		SocialLinks: p.SocialLinks,
	}
}

func (c *Connection) ApplySnapshot(s ProfileSnapshot) {
	c.ConnectedUserName = s.Name
	c.ConnectedUserPhone = s.Phone
	c.ConnectedUserEmail = s.Email
	c.ConnectedUserDescription = s.Description
	c.ConnectedUserLocation = s.Location
	c.ConnectedUserSocialLinks = s.SocialLinks
}

// HasLocation reports whether coordinates were recorded. Zero/zero means
// absent.
func (c *Connection) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// ValidateCoordinates accepts either the absent pair (0, 0) or a finite
// pair within geodetic ranges.
func ValidateCoordinates(lat, lon float64) error {
	if !isFinite(lat) || !isFinite(lon) {
		return ErrInvalidCoordinates
	}
	if lat == 0 && lon == 0 {
		return nil
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Matches reports whether the connection matches a free-text search over
// the counterpart name, email and event fields.
func (c *Connection) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range []string{c.ConnectedUserName, c.ConnectedUserEmail, c.EventName, c.EventLocation} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
