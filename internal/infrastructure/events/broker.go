// Package events fans out per-user change notifications to live
// subscribers such as websocket streams.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	ProfileUpdated      Type = "profile.updated"
	SettingsUpdated     Type = "settings.updated"
	ConnectionCreated   Type = "connection.created"
	ConnectionUpdated   Type = "connection.updated"
	ConnectionDeleted   Type = "connection.deleted"
	NotificationCreated Type = "notification.created"
)

type Event struct {
	Type   Type        `json:"type"`
	UserID string      `json:"user_id"`
	Data   interface{} `json:"data,omitempty"`
	At     time.Time   `json:"at"`
}

// Publisher is the write side consumed by use cases.
type Publisher interface {
	Publish(e Event)
}

const subscriberBuffer = 32

type subscriber struct {
	ch chan Event
}

// Broker delivers each event to every subscriber of the event's user. A
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscriber]struct{})}
}

// Subscribe returns a channel of the user's events and a cancel func that
// closes it.
func (b *Broker) Subscribe(userID string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if m := b.subs[userID]; m != nil {
				delete(m, s)
				if len(m) == 0 {
					delete(b.subs, userID)
				}
			}
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

func (b *Broker) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[e.UserID] {
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Subscribers reports the number of live subscribers for a user.
func (b *Broker) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
