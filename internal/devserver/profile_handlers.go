package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest lists the editable profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio" validate:"omitempty,max=500"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Address   *string `json:"address"`
}

func (s *Server) getProfile(c *gin.Context) {
	user, _ := CurrentUser(c)
	respond(c, http.StatusOK, "", user)
}

func (s *Server) updateProfile(c *gin.Context) {
	user, _ := CurrentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&user.FirstName, req.FirstName)
	assign(&user.LastName, req.LastName)
	assign(&user.Phone, req.Phone)
	assign(&user.Bio, req.Bio)
	assign(&user.Avatar, req.Avatar)
	assign(&user.Address, req.Address)

	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update profile")
		fail(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	respond(c, http.StatusOK, "Profile updated", user)
}
