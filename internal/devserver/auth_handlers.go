package devserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const otpTTL = 10 * time.Minute

// SignupRequest represents a registration request
type SignupRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest carries the signup code
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// ForgotPasswordRequest asks for a reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest sets a new password
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// AuthData is returned by signup, login and verification
type AuthData struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (s *Server) signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.ToLower(req.Email)

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		fail(c, http.StatusConflict, "An account with this email already exists")
		return
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         roleUser,
	}
	if err := s.db.Create(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create user")
		fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if err := s.issueOTP(user, otpPurposeVerify); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	s.respondWithToken(c, http.StatusCreated, "Account created. A verification code has been sent to your email.", user)
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.findUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find user")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := VerifyPassword(req.Password, user.PasswordHash); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if !user.EmailVerified {
		fail(c, http.StatusForbidden, "Please verify your email before logging in")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")
	s.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (s *Server) verifyEmailOTP(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := s.checkOTP(c, req.Email, req.OTP, otpPurposeVerify)
	if !ok {
		return
	}

	user.EmailVerified = true
	clearOTP(user)
	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to verify user")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.respondWithToken(c, http.StatusOK, "Email verified successfully", user)
}

func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	// The answer is the same whether or not the account exists
	const message = "If an account exists for this email, a reset code has been sent"

	user, err := s.findUserByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().Err(err).Msg("Failed to find user")
		}
		respond(c, http.StatusOK, message, nil)
		return
	}

	if err := s.issueOTP(user, otpPurposeReset); err != nil {
		fail(c, http.StatusInternalServerError, "Failed to send reset code")
		return
	}
	respond(c, http.StatusOK, message, nil)
}

func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := s.checkOTP(c, req.Email, req.OTP, otpPurposeReset)
	if !ok {
		return
	}

	passwordHash, err := HashPassword(req.NewPassword)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	user.PasswordHash = passwordHash
	// Receiving the code proves ownership of the address
	user.EmailVerified = true
	clearOTP(user)
	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset password")
		fail(c, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	respond(c, http.StatusOK, "Password reset successfully", nil)
}

func (s *Server) findUserByEmail(email string) (*User, error) {
	var user User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// issueOTP stores a fresh code on user and logs it in place of an email
func (s *Server) issueOTP(user *User, purpose string) error {
	code, err := generateOTP()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate code")
		return err
	}

	expires := time.Now().Add(otpTTL)
	user.OTPCode = code
	user.OTPPurpose = purpose
	user.OTPExpiresAt = &expires
	if err := s.db.Save(user).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to store code")
		return err
	}

	s.metrics.otpIssued.WithLabelValues(purpose).Inc()
	s.logger.Info().
		Str("email", user.Email).
		Str("purpose", purpose).
		Str("otp", code).
		Msg("One-time code issued")
	return nil
}

// checkOTP loads the user and validates the code, writing the failure
// response itself
func (s *Server) checkOTP(c *gin.Context, email, code, purpose string) (*User, bool) {
	user, err := s.findUserByEmail(email)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid or expired code")
		return nil, false
	}

	if user.OTPCode == "" || user.OTPPurpose != purpose || !otpMatches(user.OTPCode, code) {
		fail(c, http.StatusBadRequest, "Invalid or expired code")
		return nil, false
	}

	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		fail(c, http.StatusBadRequest, "Invalid or expired code")
		return nil, false
	}

	return user, true
}

func otpMatches(stored, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

func clearOTP(user *User) {
	user.OTPCode = ""
	user.OTPPurpose = ""
	user.OTPExpiresAt = nil
}

func (s *Server) respondWithToken(c *gin.Context, status int, message string, user *User) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		fail(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respond(c, status, message, AuthData{Token: token, User: user})
}
