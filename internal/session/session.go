// Package session holds the credential of the signed-in user.
//
// A Session is created once per process and handed to the transport client,
// which reads the bearer token on every request. Only explicit Set and Clear
// calls change it; the transport layer never does.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// RoleAdmin is the role value the backend assigns to administrators
const RoleAdmin = "admin"

// ErrNotFound is returned by a Store that has nothing persisted
var ErrNotFound = errors.New("no stored session")

// User describes the signed-in account
type User struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
}

// Name returns the display name, falling back to the email
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// State is the persisted form of a session
type State struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
	Admin bool   `json:"admin"`
}

// Store persists session state between processes
type Store interface {
	Load() (State, error)
	Save(state State) error
	Delete() error
}

// Session is safe for concurrent use
type Session struct {
	mu    sync.RWMutex
	state State
	store Store
}

// New returns an empty session backed by store. A nil store keeps the
// session in memory only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Open returns a session initialised from whatever store has persisted
func Open(store Store) (*Session, error) {
	s := New(store)
	if store == nil {
		return s, nil
	}

	state, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	s.state = state
	return s, nil
}

// Token returns the bearer token, or an empty string when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns a copy of the stored user descriptor
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// IsAdmin reports whether the session was established through admin login
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Admin
}

// Authenticated reports whether a token is present
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the credential and persists it
func (s *Session) Set(token string, user *User, admin bool) error {
	if token == "" {
		return errors.New("token is required")
	}

	state := State{Token: token, Admin: admin}
	if user != nil {
		u := *user
		state.User = &u
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(state); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	s.state = state
	return nil
}

// Clear signs the session out and removes persisted state
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if s.store != nil {
		if err := s.store.Delete(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}
	return nil
}
