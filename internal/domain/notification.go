package domain

import (
	"time"

	"github.com/lib/pq"
)

type NotificationKind string

const (
	NotificationNewConnection NotificationKind = "new_connection"
	NotificationFollowUp      NotificationKind = "follow_up"
)

type Notification struct {
	ID           string           `json:"id" db:"id"`
	UserID       string           `json:"user_id" db:"user_id"`
	ConnectionID string           `json:"connection_id" db:"connection_id"`
	Kind         NotificationKind `json:"kind" db:"kind"`
	Title        string           `json:"title" db:"title"`
	Body         string           `json:"body" db:"body"`
	Actions      pq.StringArray   `json:"actions" db:"actions"`
	Read         bool             `json:"read" db:"read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
