package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatly/estatly/internal/client"
	"github.com/estatly/estatly/internal/session"
)

// mockAPIServer answers every auth endpoint and records what it received
func mockAPIServer(t *testing.T, status int, response string) (*httptest.Server, *[]string) {
	t.Helper()

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		paths = append(paths, r.URL.Path)

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &paths
}

func TestService_EndpointPaths(t *testing.T) {
	srv, paths := mockAPIServer(t, http.StatusOK, `{"success":true,"message":"ok"}`)
	svc := New(client.New(srv.URL))
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.VerifyEmailOTP(ctx, VerifyEmailRequest{Email: "jane@example.com", OTP: "123456"})
	require.NoError(t, err)
	_, err = svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "jane@example.com"})
	require.NoError(t, err)
	_, err = svc.ResetPassword(ctx, ResetPasswordRequest{Email: "jane@example.com", OTP: "654321", NewPassword: "secret2"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/auth/signup",
		"/api/auth/login",
		"/api/auth/verify-email-otp",
		"/api/auth/forgot-password",
		"/api/auth/reset-password",
	}, *paths)
}

func TestLogin_ReturnsEnvelopeAndLeavesSessionAlone(t *testing.T) {
	srv, _ := mockAPIServer(t, http.StatusOK,
		`{"success":true,"data":{"token":"t1","user":{"id":"u1","email":"admin@x.com","role":"admin"}}}`)

	s := session.New(session.NewMemoryStore())
	svc := New(client.New(srv.URL, client.WithSession(s)))

	env, err := svc.Login(context.Background(), Credentials{Email: "admin@x.com", Password: "admin123"})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "t1", env.Data.Token)
	assert.Equal(t, "admin", env.Data.User.Role)

	assert.False(t, s.Authenticated(), "storing the credential is the caller's job")
}

func TestLogin_PropagatesTransportErrorUnchanged(t *testing.T) {
	srv, _ := mockAPIServer(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid email or password"}`)
	svc := New(client.New(srv.URL))

	env, err := svc.Login(context.Background(), Credentials{Email: "jane@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Nil(t, env)

	apiErr, ok := err.(*client.Error)
	require.True(t, ok, "error must be the transport error itself, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", client.UserMessage(err, "Login failed"))
}

func TestLogin_UndecodableBodyIsTransportError(t *testing.T) {
	srv, _ := mockAPIServer(t, http.StatusOK, `{"success":true,"data":"not-an-object"}`)
	svc := New(client.New(srv.URL))

	env, err := svc.Login(context.Background(), Credentials{Email: "jane@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Nil(t, env)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.MethodPost, apiErr.Method)
	assert.Equal(t, srv.URL+"/api/auth/login", apiErr.URL)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "Login failed", client.UserMessage(err, "Login failed"))
}
