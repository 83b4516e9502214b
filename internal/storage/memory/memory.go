// Package memory keeps every collection in process memory. It backs the
// "memory" storage driver for local runs and the service tests.
package memory

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type storedMessage struct {
	models.Message
	seq uint64
}

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	seq      uint64
	users    map[uuid.UUID]models.User
	messages map[uuid.UUID]storedMessage
	tokens   map[uuid.UUID]map[string]models.RefreshToken
	links    map[uuid.UUID]models.LoginLink
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[uuid.UUID]models.User),
		messages: make(map[uuid.UUID]storedMessage),
		tokens:   make(map[uuid.UUID]map[string]models.RefreshToken),
		links:    make(map[uuid.UUID]models.LoginLink),
	}
}

// SetClock replaces the time source used for created_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *Users       { return &Users{s: s} }
func (s *Store) Messages() *Messages { return &Messages{s: s} }
func (s *Store) Tokens() *Tokens     { return &Tokens{s: s} }
func (s *Store) Links() *Links       { return &Links{s: s} }

type Users struct{ s *Store }

func (r *Users) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) UserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if email != "" && u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

func (r *Users) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.Email != "" {
		for _, u := range r.s.users {
			if u.Email == user.Email {
				return nil, app_errors.ErrUserExists
			}
		}
	}
	user.ID = uuid.New()
	user.Role = ""
	user.CreatedAt = r.s.now()
	r.s.users[user.ID] = user
	return &user, nil
}

func (r *Users) SetRole(_ context.Context, id uuid.UUID, role models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return app_errors.ErrUserNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r *Users) SetImage(_ context.Context, id uuid.UUID, objectKey string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return app_errors.ErrUserNotFound
	}
	u.Image = objectKey
	r.s.users[id] = u
	return nil
}

type Messages struct{ s *Store }

func (r *Messages) CreateMessage(_ context.Context, msg models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[msg.UserID]; !ok {
		return nil, app_errors.ErrAuthorNotFound
	}
	r.s.seq++
	msg.ID = uuid.New()
	msg.CreatedAt = r.s.now()
	r.s.messages[msg.ID] = storedMessage{Message: msg, seq: r.s.seq}
	return &msg, nil
}

func (r *Messages) RecentMessages(_ context.Context, limit int) ([]models.MessageView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := make([]storedMessage, 0, len(r.s.messages))
	for _, m := range r.s.messages {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].seq > all[j].seq
	})
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}

	views := make([]models.MessageView, 0, len(all))
	for _, m := range all {
		views = append(views, r.view(m.Message))
	}
	return views, nil
}

func (r *Messages) MessagesByIDs(_ context.Context, ids []uuid.UUID) ([]models.MessageView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	views := make([]models.MessageView, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.s.messages[id]; ok {
			views = append(views, r.view(m.Message))
		}
	}
	return views, nil
}

func (r *Messages) view(m models.Message) models.MessageView {
	return models.MessageView{Message: m, Author: r.s.users[m.UserID].DisplayName()}
}

func (r *Messages) DeleteMessage(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.messages, id)
	return nil
}

type Tokens struct{ s *Store }

func hashToken(token *jwt.Token) string {
	sum := sha256.Sum256([]byte(token.Raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (r *Tokens) Create(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, fmt.Errorf("refresh token has no expiration")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt := models.RefreshToken{
		UserID:      userID,
		HashedToken: hashToken(token),
		CreatedAt:   r.s.now(),
		ExpiresAt:   exp.Time,
	}
	if r.s.tokens[userID] == nil {
		r.s.tokens[userID] = make(map[string]models.RefreshToken)
	}
	r.s.tokens[userID][rt.HashedToken] = rt
	return &rt, nil
}

func (r *Tokens) ByPrimaryKey(_ context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rt, ok := r.s.tokens[userID][hashToken(token)]
	if !ok {
		return nil, app_errors.ErrTokenNotFound
	}
	return &rt, nil
}

func (r *Tokens) DeleteToken(_ context.Context, userID uuid.UUID, token *jwt.Token) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byHash := r.s.tokens[userID]
	h := hashToken(token)
	if _, ok := byHash[h]; !ok {
		return false, nil
	}
	delete(byHash, h)
	return true, nil
}

func (r *Tokens) DeleteUserTokens(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, userID)
	return nil
}

func (r *Tokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for userID, byHash := range r.s.tokens {
		for h, rt := range byHash {
			if rt.ExpiresAt.Before(now) {
				delete(byHash, h)
				n++
			}
		}
		if len(byHash) == 0 {
			delete(r.s.tokens, userID)
		}
	}
	return n, nil
}

type Links struct{ s *Store }

func (r *Links) CreateLink(_ context.Context, link models.LoginLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	link.CreatedAt = r.s.now()
	r.s.links[link.ID] = link
	return nil
}

func (r *Links) LinkByID(_ context.Context, id uuid.UUID) (*models.LoginLink, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	link, ok := r.s.links[id]
	if !ok {
		return nil, app_errors.ErrLinkNotFound
	}
	return &link, nil
}

func (r *Links) DeleteLink(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.links[id]
	delete(r.s.links, id)
	return ok, nil
}

func (r *Links) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, link := range r.s.links {
		if link.ExpiresAt.Before(now) {
			delete(r.s.links, id)
			n++
		}
	}
	return n, nil
}
