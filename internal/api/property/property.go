package property

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/estatly/estatly/internal/client"
)

const (
	propertiesPath = "/api/properties"
	featuredPath   = "/api/properties/featured"
)

// Listing statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
	StatusSold     = "sold"
)

// Statuses lists every listing status the backend accepts
var Statuses = []string{StatusActive, StatusInactive, StatusPending, StatusSold}

// Property is a listed real-estate asset
type Property struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string    `json:"type" yaml:"type"`
	Status      string    `json:"propertyStatus" yaml:"propertyStatus"`
	Price       float64   `json:"price" yaml:"price"`
	Address     string    `json:"address,omitempty" yaml:"address,omitempty"`
	City        string    `json:"city" yaml:"city"`
	State       string    `json:"state,omitempty" yaml:"state,omitempty"`
	Country     string    `json:"country,omitempty" yaml:"country,omitempty"`
	Bedrooms    int       `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int       `json:"bathrooms" yaml:"bathrooms"`
	Area        float64   `json:"area,omitempty" yaml:"area,omitempty"`
	Images      []string  `json:"images,omitempty" yaml:"images,omitempty"`
	Featured    bool      `json:"featured" yaml:"featured"`
	OwnerID     string    `json:"ownerId,omitempty" yaml:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
}

// Input is the body for create and update
type Input struct {
	Title       string   `json:"title,omitempty" validate:"required"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty" validate:"required,oneof=house apartment condo land commercial villa"`
	Price       float64  `json:"price,omitempty" validate:"gte=0"`
	Address     string   `json:"address,omitempty"`
	City        string   `json:"city,omitempty" validate:"required"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
	Bedrooms    int      `json:"bedrooms,omitempty" validate:"gte=0"`
	Bathrooms   int      `json:"bathrooms,omitempty" validate:"gte=0"`
	Area        float64  `json:"area,omitempty" validate:"gte=0"`
	Images      []string `json:"images,omitempty" validate:"dive,url"`
	Featured    bool     `json:"featured,omitempty"`
}

// Pagination describes the slice of results returned
type Pagination struct {
	Page       int `json:"page" yaml:"page"`
	Limit      int `json:"limit" yaml:"limit"`
	Total      int `json:"total" yaml:"total"`
	TotalPages int `json:"totalPages" yaml:"totalPages"`
}

// Page is one page of properties
type Page struct {
	Properties []Property `json:"properties" yaml:"properties"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// ListParams filters and paginates a property listing. Zero values are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Type     string
	City     string
	MinPrice float64
	MaxPrice float64
	Bedrooms int
	Status   string
	Sort     string
}

// Query encodes the params as URL query values
func (p ListParams) Query() url.Values {
	q := url.Values{}
	setInt := func(key string, v int) {
		if v > 0 {
			q.Set(key, strconv.Itoa(v))
		}
	}
	setFloat := func(key string, v float64) {
		if v > 0 {
			q.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	setString := func(key, v string) {
		if v != "" {
			q.Set(key, v)
		}
	}

	setInt("page", p.Page)
	setInt("limit", p.Limit)
	setString("search", p.Search)
	setString("type", p.Type)
	setString("city", p.City)
	setFloat("minPrice", p.MinPrice)
	setFloat("maxPrice", p.MaxPrice)
	setInt("bedrooms", p.Bedrooms)
	setString("status", p.Status)
	setString("sort", p.Sort)
	return q
}

// Service exposes the public property endpoints
type Service struct {
	client *client.Client
}

func New(c *client.Client) *Service {
	return &Service{client: c}
}

// List returns properties matching params
func (s *Service) List(ctx context.Context, params ListParams) client.Result[Page] {
	return client.Call[Page](ctx, s.client, http.MethodGet, propertiesPath, params.Query(), nil, "Failed to get properties")
}

// Featured returns the highlighted listings shown on the homepage
func (s *Service) Featured(ctx context.Context, limit int) client.Result[[]Property] {
	return client.Call[[]Property](ctx, s.client, http.MethodGet, featuredPath, ListParams{Limit: limit}.Query(), nil, "Failed to get featured properties")
}

// Get fetches one property
func (s *Service) Get(ctx context.Context, id string) client.Result[Property] {
	return client.Call[Property](ctx, s.client, http.MethodGet, client.PathEscape(propertiesPath, id), nil, nil, "Failed to get property")
}

// Create lists a new property
func (s *Service) Create(ctx context.Context, in Input) client.Result[Property] {
	return client.Call[Property](ctx, s.client, http.MethodPost, propertiesPath, nil, in, "Failed to create property")
}

// Update replaces the fields set in `in`
func (s *Service) Update(ctx context.Context, id string, in Input) client.Result[Property] {
	return client.Call[Property](ctx, s.client, http.MethodPut, client.PathEscape(propertiesPath, id), nil, in, "Failed to update property")
}

// Delete removes a property owned by the current user
func (s *Service) Delete(ctx context.Context, id string) client.Result[json.RawMessage] {
	return client.Call[json.RawMessage](ctx, s.client, http.MethodDelete, client.PathEscape(propertiesPath, id), nil, nil, "Failed to delete property")
}
