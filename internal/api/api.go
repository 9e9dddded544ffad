// Package api gathers every resource service behind one value.
//
// Portal embeds the auth service, so account calls can be made on the portal
// itself (portal.Login, portal.Signup); the other areas are reached through
// their named fields.
package api

import (
	"github.com/estatly/estatly/internal/api/admin"
	"github.com/estatly/estatly/internal/api/auth"
	"github.com/estatly/estatly/internal/api/profile"
	"github.com/estatly/estatly/internal/api/property"
	"github.com/estatly/estatly/internal/client"
)

// Portal is the aggregate API surface
type Portal struct {
	*auth.Service

	Client     *client.Client
	Auth       *auth.Service
	Profile    *profile.Service
	Properties *property.Service
	Admin      *admin.Service
}

// New wires every service to the same transport client
func New(c *client.Client) *Portal {
	authService := auth.New(c)
	return &Portal{
		Service:    authService,
		Client:     c,
		Auth:       authService,
		Profile:    profile.New(c),
		Properties: property.New(c),
		Admin:      admin.New(c),
	}
}
