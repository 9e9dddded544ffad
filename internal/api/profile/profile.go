package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/estatly/estatly/internal/client"
)

const profilePath = "/api/profile"

// Profile is the current user's account profile
type Profile struct {
	ID            string    `json:"id" yaml:"id"`
	Email         string    `json:"email" yaml:"email"`
	FirstName     string    `json:"firstName" yaml:"firstName"`
	LastName      string    `json:"lastName" yaml:"lastName"`
	Phone         string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role          string    `json:"role" yaml:"role"`
	Bio           string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Avatar        string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Address       string    `json:"address,omitempty" yaml:"address,omitempty"`
	EmailVerified bool      `json:"emailVerified" yaml:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
}

// UpdateRequest replaces the editable profile fields. Empty fields are not sent.
type UpdateRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Bio       string `json:"bio,omitempty" validate:"max=500"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,url"`
	Address   string `json:"address,omitempty"`
}

// Service exposes the current user's profile endpoints
type Service struct {
	client *client.Client
}

func New(c *client.Client) *Service {
	return &Service{client: c}
}

// Get fetches the current profile
func (s *Service) Get(ctx context.Context) client.Result[Profile] {
	return client.Call[Profile](ctx, s.client, http.MethodGet, profilePath, nil, nil, "Failed to get profile")
}

// Update replaces the current profile
func (s *Service) Update(ctx context.Context, req UpdateRequest) client.Result[Profile] {
	return client.Call[Profile](ctx, s.client, http.MethodPut, profilePath, nil, req, "Failed to update profile")
}
