// Package memory holds in-process repository implementations used when
// STORAGE_TYPE=memory and by use-case tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gdugdh24/tapcard-backend/internal/repository"
	"github.com/google/uuid"
)

// Store backs every repository in this package with one set of maps.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*domain.User
	sessions      map[string]*domain.Session
	profiles      map[string]*domain.Profile
	settings      map[string]*domain.UserSettings
	connections   map[string]*domain.Connection
	notifications map[string]*domain.Notification
	nextSession   int
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		sessions:      make(map[string]*domain.Session),
		profiles:      make(map[string]*domain.Profile),
		settings:      make(map[string]*domain.UserSettings),
		connections:   make(map[string]*domain.Connection),
		notifications: make(map[string]*domain.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository                 { return userRepo{s} }
func (s *Store) Sessions() repository.SessionRepository           { return sessionRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository           { return profileRepo{s} }
func (s *Store) Settings() repository.SettingsRepository          { return settingsRepo{s} }
func (s *Store) Connections() repository.ConnectionRepository     { return connectionRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == email || existing.ID == u.ID {
			return domain.ErrUserAlreadyExists
		}
	}
	u.Email = email
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(ctx context.Context, sess *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSession++
	sess.ID = r.s.nextSession
	sess.CreatedAt = r.s.now()
	cp := *sess
	r.s.sessions[sess.Token] = &cp
	return nil
}

func (r sessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

func (r sessionRepo) DeleteByToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, token)
	return nil
}

type profileRepo struct{ s *Store }

func copyProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	if p.SocialLinks != nil {
		cp.SocialLinks = append(domain.SocialLinks(nil), p.SocialLinks...)
	}
	return &cp
}

func (r profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return domain.ErrProfileAlreadyExists
	}
	now := r.s.now()
	p.CreatedAt = now
	p.LastSeen = now
	r.s.profiles[p.ID] = copyProfile(p)
	return nil
}

func (r profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (r profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.profiles[p.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.LastSeen = existing.LastSeen
	r.s.profiles[p.ID] = copyProfile(p)
	return nil
}

func (r profileRepo) TouchLastSeen(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.LastSeen = r.s.now()
	return nil
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[userID]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	cp := *st
	return &cp, nil
}

func (r settingsRepo) Upsert(ctx context.Context, st *domain.UserSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.UpdatedAt = r.s.now()
	cp := *st
	r.s.settings[st.UserID] = &cp
	return nil
}

type connectionRepo struct{ s *Store }

func copyConnection(c *domain.Connection) *domain.Connection {
	cp := *c
	if c.ConnectedUserSocialLinks != nil {
		cp.ConnectedUserSocialLinks = append(domain.SocialLinks(nil), c.ConnectedUserSocialLinks...)
	}
	return &cp
}

func (r connectionRepo) Create(ctx context.Context, c *domain.Connection) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.now()
	r.s.connections[c.ID] = copyConnection(c)
	return c.ID, nil
}

func (r connectionRepo) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.connections[id]
	if !ok {
		return nil, domain.ErrConnectionNotFound
	}
	return copyConnection(c), nil
}

func (r connectionRepo) GetByUsers(ctx context.Context, userID, connectedUserID string) (*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.connections {
		if c.UserID == userID && c.ConnectedUserID == connectedUserID {
			return copyConnection(c), nil
		}
	}
	return nil, domain.ErrConnectionNotFound
}

func (r connectionRepo) ListForUser(ctx context.Context, userID string) ([]*domain.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Connection
	for _, c := range r.s.connections {
		if c.UserID == userID {
			out = append(out, copyConnection(c))
		}
	}
	return out, nil
}

func (r connectionRepo) update(id string, fn func(c *domain.Connection)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.connections[id]
	if !ok {
		return domain.ErrConnectionNotFound
	}
	fn(c)
	return nil
}

func (r connectionRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	return r.update(id, func(c *domain.Connection) { c.Notes = notes })
}

func (r connectionRepo) UpdateEvent(ctx context.Context, id, name, location string) error {
	return r.update(id, func(c *domain.Connection) {
		c.EventName = name
		c.EventLocation = location
	})
}

func (r connectionRepo) UpdateProfileSnapshot(ctx context.Context, id string, snap domain.ProfileSnapshot) error {
	return r.update(id, func(c *domain.Connection) { c.ApplySnapshot(snap) })
}

func (r connectionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.connections[id]; !ok {
		return domain.ErrConnectionNotFound
	}
	delete(r.s.connections, id)
	return nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = r.s.now()
	cp := *n
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			cp := *n
			all = append(all, &cp)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r notificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}
