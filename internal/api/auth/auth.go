// Package auth wraps the account endpoints.
//
// Unlike the other resource packages these calls are not normalized: a failed
// request returns the *client.Error unchanged and the caller decides how to
// present it (client.UserMessage is the usual choice). Storing the returned
// token in the session is also left to the caller.
package auth

import (
	"context"

	"github.com/estatly/estatly/internal/client"
	"github.com/estatly/estatly/internal/session"
)

const (
	signupPath         = "/api/auth/signup"
	loginPath          = "/api/auth/login"
	verifyEmailPath    = "/api/auth/verify-email-otp"
	forgotPasswordPath = "/api/auth/forgot-password"
	resetPasswordPath  = "/api/auth/reset-password"
)

// SignupRequest represents the registration request body
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone,omitempty"`
}

// Credentials represents the login request body
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest carries the one-time code sent at signup
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

// ForgotPasswordRequest asks the backend to send a reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest submits a new password together with the reset code
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// Payload is the data returned by signup, login and verification
type Payload struct {
	Token string        `json:"token,omitempty" yaml:"token,omitempty"`
	User  *session.User `json:"user,omitempty" yaml:"user,omitempty"`
}

// Service exposes the account endpoints
type Service struct {
	client *client.Client
}

func New(c *client.Client) *Service {
	return &Service{client: c}
}

// Signup registers an account
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*client.Envelope[Payload], error) {
	return post[Payload](ctx, s.client, signupPath, req)
}

// Login authenticates with email and password
func (s *Service) Login(ctx context.Context, creds Credentials) (*client.Envelope[Payload], error) {
	return post[Payload](ctx, s.client, loginPath, creds)
}

// VerifyEmailOTP confirms an email address with the one-time code
func (s *Service) VerifyEmailOTP(ctx context.Context, req VerifyEmailRequest) (*client.Envelope[Payload], error) {
	return post[Payload](ctx, s.client, verifyEmailPath, req)
}

// ForgotPassword requests a password reset code
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*client.Envelope[Payload], error) {
	return post[Payload](ctx, s.client, forgotPasswordPath, req)
}

// ResetPassword sets a new password using the reset code
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*client.Envelope[Payload], error) {
	return post[Payload](ctx, s.client, resetPasswordPath, req)
}

func post[T any](ctx context.Context, c *client.Client, path string, body any) (*client.Envelope[T], error) {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var env client.Envelope[T]
	if err := resp.Decode(&env); err != nil {
		return nil, &client.Error{
			Method:     resp.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        err,
		}
	}
	return &env, nil
}
