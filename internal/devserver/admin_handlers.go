package devserver

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/estatly/estatly/internal/assert"
)

// StatusRequest changes a listing's status
type StatusRequest struct {
	PropertyStatus string `json:"propertyStatus" validate:"required,oneof=active inactive pending sold"`
}

var propertyStatuses = []string{"active", "inactive", "pending", "sold"}

type userQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Role   string `form:"role"`
}

func (s *Server) adminStats(c *gin.Context) {
	var stats struct {
		TotalUsers         int64   `json:"totalUsers"`
		VerifiedUsers      int64   `json:"verifiedUsers"`
		TotalProperties    int64   `json:"totalProperties"`
		ActiveProperties   int64   `json:"activeProperties"`
		InactiveProperties int64   `json:"inactiveProperties"`
		TotalListingValue  float64 `json:"totalListingValue"`
	}

	err := errors.Join(
		s.db.Model(&User{}).Count(&stats.TotalUsers).Error,
		s.db.Model(&User{}).Where("email_verified = ?", true).Count(&stats.VerifiedUsers).Error,
		s.db.Model(&Property{}).Count(&stats.TotalProperties).Error,
		s.db.Model(&Property{}).Where("property_status = ?", "active").Count(&stats.ActiveProperties).Error,
		s.db.Model(&Property{}).Where("property_status = ?", "inactive").Count(&stats.InactiveProperties).Error,
		s.db.Model(&Property{}).Where("property_status = ?", "active").
			Select("COALESCE(SUM(price), 0)").Scan(&stats.TotalListingValue).Error,
	)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute stats")
		fail(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	respond(c, http.StatusOK, "", stats)
}

func (s *Server) adminListProperties(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	q.normalize()

	db := s.db.Model(&Property{})
	if q.Status != "" {
		db = db.Where("property_status = ?", q.Status)
	}
	s.paginate(c, db, q)
}

func (s *Server) adminUpdatePropertyStatus(c *gin.Context) {
	property, ok := s.loadProperty(c)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		fail(c, http.StatusBadRequest, "propertyStatus must be one of: active, inactive, pending, sold")
		return
	}

	assert.OneOf(req.PropertyStatus, propertyStatuses...)
	property.PropertyStatus = req.PropertyStatus
	if err := s.db.Save(property).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update property status")
		fail(c, http.StatusInternalServerError, "Failed to update property status")
		return
	}

	admin, _ := CurrentUser(c)
	s.logger.Info().
		Str("property_id", property.ID).
		Str("status", property.PropertyStatus).
		Str("updated_by", admin.ID).
		Msg("Property status changed")

	respond(c, http.StatusOK, "Property status updated", property)
}

func (s *Server) adminDeleteProperty(c *gin.Context) {
	property, ok := s.loadProperty(c)
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

func (s *Server) adminListUsers(c *gin.Context) {
	var q userQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > maxPageSize {
		q.Limit = 20
	}

	db := s.db.Model(&User{})
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if q.Role != "" {
		db = db.Where("role = ?", q.Role)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	users := []User{}
	if err := db.Order("created_at DESC").Offset((q.Page - 1) * q.Limit).Limit(q.Limit).Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, "", gin.H{
		"users": users,
		"pagination": Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      int(total),
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	})
}

func (s *Server) adminGetUser(c *gin.Context) {
	var user User
	if err := FindByID(s.db, c.Param("id"), &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(c, http.StatusOK, "", user)
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	userID := c.Param("id")
	admin, _ := CurrentUser(c)

	if userID == admin.ID {
		fail(c, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	var user User
	if err := FindByID(s.db, userID, &user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", user.ID).Delete(&Property{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete user")
		fail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("deleted_by", admin.ID).
		Msg("User deleted")

	respond(c, http.StatusOK, "User deleted", gin.H{"id": userID})
}
