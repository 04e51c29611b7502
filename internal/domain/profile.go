package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Profile is the shareable identity of a user. ID equals the owning user's
// ID and never changes once assigned.
type Profile struct {
	ID          string      `json:"id" db:"id"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	LastSeen    time.Time   `json:"last_seen" db:"last_seen"`
	FullName    string      `json:"full_name" db:"full_name"`
	Phone       string      `json:"phone" db:"phone"`
	Email       string      `json:"email" db:"email"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	SocialLinks SocialLinks `json:"social_links" db:"social_links"`
}

// SocialLinks is stored as a JSONB column.
type SocialLinks []SocialLink

func (l SocialLinks) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *SocialLinks) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("social links: unsupported type %T", src)
	}
	var links []SocialLink
	if err := json.Unmarshal(data, &links); err != nil {
		return err
	}
	if len(links) == 0 {
		links = nil
	}
	*l = links
	return nil
}
