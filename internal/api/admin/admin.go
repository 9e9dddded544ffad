// Package admin wraps the moderation endpoints used by the admin console.
//
// Access control is entirely the backend's: nothing here checks roles.
// Login in particular returns whatever the shared login endpoint returns, and
// the caller must check IsAdmin on the returned user before treating the
// session as privileged.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/estatly/estatly/internal/api/auth"
	"github.com/estatly/estatly/internal/api/property"
	"github.com/estatly/estatly/internal/client"
	"github.com/estatly/estatly/internal/session"
)

const (
	loginPath      = "/api/auth/login"
	statsPath      = "/api/admin/stats"
	propertiesPath = "/api/admin/properties"
	usersPath      = "/api/admin/users"
)

// Stats are the aggregate dashboard metrics
type Stats struct {
	TotalUsers         int     `json:"totalUsers" yaml:"totalUsers"`
	VerifiedUsers      int     `json:"verifiedUsers" yaml:"verifiedUsers"`
	TotalProperties    int     `json:"totalProperties" yaml:"totalProperties"`
	ActiveProperties   int     `json:"activeProperties" yaml:"activeProperties"`
	InactiveProperties int     `json:"inactiveProperties" yaml:"inactiveProperties"`
	TotalListingValue  float64 `json:"totalListingValue" yaml:"totalListingValue"`
}

// User is an account as seen by moderators
type User struct {
	ID            string    `json:"id" yaml:"id"`
	Email         string    `json:"email" yaml:"email"`
	FirstName     string    `json:"firstName" yaml:"firstName"`
	LastName      string    `json:"lastName" yaml:"lastName"`
	Phone         string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role          string    `json:"role" yaml:"role"`
	EmailVerified bool      `json:"emailVerified" yaml:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
}

// UserPage is one page of users
type UserPage struct {
	Users      []User              `json:"users" yaml:"users"`
	Pagination property.Pagination `json:"pagination" yaml:"pagination"`
}

// UserListParams filters and paginates the user listing
type UserListParams struct {
	Page   int
	Limit  int
	Search string
	Role   string
}

// Query encodes the params as URL query values
func (p UserListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Role != "" {
		q.Set("role", p.Role)
	}
	return q
}

type statusRequest struct {
	PropertyStatus string `json:"propertyStatus"`
}

// IsAdmin reports whether user carries the admin role
func IsAdmin(user *session.User) bool {
	return user != nil && user.Role == session.RoleAdmin
}

// Service exposes the admin endpoints
type Service struct {
	client *client.Client
}

func New(c *client.Client) *Service {
	return &Service{client: c}
}

// Login authenticates through the shared login endpoint. It performs no
// role check.
func (s *Service) Login(ctx context.Context, creds auth.Credentials) client.Result[auth.Payload] {
	return client.Call[auth.Payload](ctx, s.client, http.MethodPost, loginPath, nil, creds, "Admin login failed")
}

// Stats fetches the dashboard metrics
func (s *Service) Stats(ctx context.Context) client.Result[Stats] {
	return client.Call[Stats](ctx, s.client, http.MethodGet, statsPath, nil, nil, "Failed to get dashboard stats")
}

// Properties lists properties for moderation, including inactive ones
func (s *Service) Properties(ctx context.Context, params property.ListParams) client.Result[property.Page] {
	return client.Call[property.Page](ctx, s.client, http.MethodGet, propertiesPath, params.Query(), nil, "Failed to get properties")
}

// UpdatePropertyStatus switches a listing between statuses such as active
// and inactive
func (s *Service) UpdatePropertyStatus(ctx context.Context, id, status string) client.Result[property.Property] {
	path := client.PathEscape(propertiesPath, id, "status")
	return client.Call[property.Property](ctx, s.client, http.MethodPut, path, nil, statusRequest{PropertyStatus: status}, "Failed to update property status")
}

// DeleteProperty removes any property
func (s *Service) DeleteProperty(ctx context.Context, id string) client.Result[json.RawMessage] {
	return client.Call[json.RawMessage](ctx, s.client, http.MethodDelete, client.PathEscape(propertiesPath, id), nil, nil, "Failed to delete property")
}

// Users lists accounts
func (s *Service) Users(ctx context.Context, params UserListParams) client.Result[UserPage] {
	return client.Call[UserPage](ctx, s.client, http.MethodGet, usersPath, params.Query(), nil, "Failed to get users")
}

// User fetches one account
func (s *Service) User(ctx context.Context, id string) client.Result[User] {
	return client.Call[User](ctx, s.client, http.MethodGet, client.PathEscape(usersPath, id), nil, nil, "Failed to get user")
}

// DeleteUser removes an account
func (s *Service) DeleteUser(ctx context.Context, id string) client.Result[json.RawMessage] {
	return client.Call[json.RawMessage](ctx, s.client, http.MethodDelete, client.PathEscape(usersPath, id), nil, nil, "Failed to delete user")
}
