// Package sessions holds the server-side session record and its stores.
//
// A session lives for a fixed window from creation; saving it never extends
// that window. The client only ever holds a signed reference to the id.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ray-remotestate/toomburg/models"
)

const DefaultTTL = 5 * time.Minute

var ErrNotFound = errors.New("session not found")

// Identity is who a session belongs to. The zero value is an anonymous visitor.
type Identity struct {
	Role   models.Role `json:"role,omitempty"`
	UserID int64       `json:"user_id,omitempty"`
}

func AdminIdentity() Identity {
	return Identity{Role: models.RoleAdmin}
}

func CustomerIdentity(userID int64) Identity {
	return Identity{Role: models.RoleCustomer, UserID: userID}
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func (i Identity) IsCustomer() bool {
	return i.Role == models.RoleCustomer && i.UserID > 0
}

func (i Identity) IsAuthenticated() bool {
	return i.IsAdmin() || i.IsCustomer()
}

type Session struct {
	ID          string               `json:"id"`
	Identity    Identity             `json:"identity"`
	DisplayName string               `json:"display_name,omitempty"`
	Discount    bool                 `json:"discount"`
	Pending     *models.PendingOrder `json:"pending,omitempty"`
	Error       string               `json:"error,omitempty"`
	Success     string               `json:"success,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   time.Time            `json:"expires_at"`
}

// PopError returns the one-shot error message and clears it.
func (s *Session) PopError() string {
	msg := s.Error
	s.Error = ""
	return msg
}

// PopSuccess returns the one-shot success message and clears it.
func (s *Session) PopSuccess() string {
	msg := s.Success
	s.Success = ""
	return msg
}

func (s *Session) clone() *Session {
	c := *s
	if s.Pending != nil {
		p := *s.Pending
		p.Items = append([]models.LineItem(nil), s.Pending.Items...)
		c.Pending = &p
	}
	return &c
}

// Store keeps sessions keyed by id.
type Store interface {
	// Create assigns the id and the expiry window and persists the session.
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	// Save persists changes without moving the expiry. Returns ErrNotFound if the session is gone.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Clock lets tests control expiry.
type Clock func() time.Time

func stamp(s *Session, now time.Time, ttl time.Duration) {
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.ExpiresAt = now.Add(ttl)
}
