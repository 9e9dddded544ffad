package devserver

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
	defaultFeatured = 6
)

// PropertyRequest is the create/update body
type PropertyRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description"`
	Type        *string   `json:"type" validate:"omitempty,oneof=house apartment condo land commercial villa"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	Country     *string   `json:"country"`
	Bedrooms    *int      `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *int      `json:"bathrooms" validate:"omitempty,gte=0"`
	Area        *float64  `json:"area" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
	Featured    *bool     `json:"featured"`
}

// listQuery is the query string accepted by the listing endpoints
type listQuery struct {
	Page     int     `form:"page"`
	Limit    int     `form:"limit"`
	Search   string  `form:"search"`
	Type     string  `form:"type"`
	City     string  `form:"city"`
	MinPrice float64 `form:"minPrice"`
	MaxPrice float64 `form:"maxPrice"`
	Bedrooms int     `form:"bedrooms"`
	Status   string  `form:"status"`
	Sort     string  `form:"sort"`
}

// Pagination mirrors what the client expects
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (q *listQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageSize
	}
	if q.Limit > maxPageSize {
		q.Limit = maxPageSize
	}
}

// where applies the filters
func (q listQuery) where(db *gorm.DB) *gorm.DB {
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.City != "" {
		db = db.Where("LOWER(city) = ?", strings.ToLower(q.City))
	}
	if q.MinPrice > 0 {
		db = db.Where("price >= ?", q.MinPrice)
	}
	if q.MaxPrice > 0 {
		db = db.Where("price <= ?", q.MaxPrice)
	}
	if q.Bedrooms > 0 {
		db = db.Where("bedrooms >= ?", q.Bedrooms)
	}
	return db
}

func (q listQuery) order() string {
	switch q.Sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	default:
		return "created_at DESC"
	}
}

// paginate filters base, runs the query and writes the page response
func (s *Server) paginate(c *gin.Context, base *gorm.DB, q listQuery) {
	db := q.where(base).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count properties")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	properties := []Property{}
	if err := db.Order(q.order()).Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&properties).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list properties")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"properties": properties,
		"pagination": Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      int(total),
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	})
}

func (s *Server) listProperties(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	q.normalize()

	// The public catalogue only shows active listings
	s.paginate(c, s.db.Model(&Property{}).Where("property_status = ?", "active"), q)
}

func (s *Server) featuredProperties(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	if q.Limit < 1 || q.Limit > maxPageSize {
		q.Limit = defaultFeatured
	}

	properties := []Property{}
	err := s.db.Where("property_status = ? AND featured = ?", "active", true).
		Order("created_at DESC").
		Limit(q.Limit).
		Find(&properties).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list featured properties")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, "", properties)
}

func (s *Server) getProperty(c *gin.Context) {
	property, ok := s.loadProperty(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "", property)
}

func (s *Server) createProperty(c *gin.Context) {
	user, _ := CurrentUser(c)

	var req PropertyRequest
	if !s.bindProperty(c, &req) {
		return
	}
	if req.Title == nil || req.Type == nil {
		fail(c, http.StatusBadRequest, "Title and type are required")
		return
	}

	property := &Property{OwnerID: user.ID, PropertyStatus: "active"}
	req.applyTo(property)

	if err := s.db.Create(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create property")
		fail(c, http.StatusInternalServerError, "Failed to create property")
		return
	}

	s.logger.Info().Str("property_id", property.ID).Str("owner_id", user.ID).Msg("Property created")
	respond(c, http.StatusCreated, "Property created", property)
}

func (s *Server) updateProperty(c *gin.Context) {
	property, ok := s.loadOwnedProperty(c)
	if !ok {
		return
	}

	var req PropertyRequest
	if !s.bindProperty(c, &req) {
		return
	}
	req.applyTo(property)

	if err := s.db.Save(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update property")
		fail(c, http.StatusInternalServerError, "Failed to update property")
		return
	}

	respond(c, http.StatusOK, "Property updated", property)
}

func (s *Server) deleteProperty(c *gin.Context) {
	property, ok := s.loadOwnedProperty(c)
	if !ok {
		return
	}

	if err := s.db.Delete(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete property")
		fail(c, http.StatusInternalServerError, "Failed to delete property")
		return
	}

	respond(c, http.StatusOK, "Property deleted", gin.H{"id": property.ID})
}

func (s *Server) bindProperty(c *gin.Context, req *PropertyRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validator.Struct(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) loadProperty(c *gin.Context) (*Property, bool) {
	var property Property
	if err := FindByID(s.db, c.Param("id"), &property); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Property not found")
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to find property")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return &property, true
}

// loadOwnedProperty allows the owner or an admin
func (s *Server) loadOwnedProperty(c *gin.Context) (*Property, bool) {
	property, ok := s.loadProperty(c)
	if !ok {
		return nil, false
	}

	user, _ := CurrentUser(c)
	if property.OwnerID != user.ID && user.Role != roleAdmin {
		fail(c, http.StatusForbidden, "You can only modify your own properties")
		return nil, false
	}
	return property, true
}

func (r *PropertyRequest) applyTo(p *Property) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.Title, r.Title)
	setString(&p.Description, r.Description)
	setString(&p.Type, r.Type)
	setString(&p.Address, r.Address)
	setString(&p.City, r.City)
	setString(&p.State, r.State)
	setString(&p.Country, r.Country)
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Bedrooms != nil {
		p.Bedrooms = *r.Bedrooms
	}
	if r.Bathrooms != nil {
		p.Bathrooms = *r.Bathrooms
	}
	if r.Area != nil {
		p.Area = *r.Area
	}
	if r.Images != nil {
		p.Images = *r.Images
	}
	if r.Featured != nil {
		p.Featured = *r.Featured
	}
}
