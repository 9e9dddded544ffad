package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/estatly/estatly/internal/api/auth"
	"github.com/estatly/estatly/internal/api/property"
	"github.com/estatly/estatly/internal/config"
	"github.com/estatly/estatly/internal/session"
)

func TestMergeInputOnlyOverlaysChangedFlags(t *testing.T) {
	current := property.Property{
		ID:       "p1",
		Title:    "Garden flat",
		Type:     "apartment",
		City:     "Abuja",
		Price:    120000,
		Bedrooms: 2,
		Featured: true,
	}

	var in property.Input
	flags := pflag.NewFlagSet("update", pflag.ContinueOnError)
	addInputFlags(flags, &in)
	require.NoError(t, flags.Parse([]string{"--price", "0", "--bedrooms", "3"}))

	merged := mergeInput(current, in, flags)

	assert.Equal(t, "Garden flat", merged.Title)
	assert.Equal(t, "apartment", merged.Type)
	assert.Equal(t, "Abuja", merged.City)
	assert.Equal(t, 0.0, merged.Price)
	assert.Equal(t, 3, merged.Bedrooms)
	assert.True(t, merged.Featured)
}

func TestValidateMessages(t *testing.T) {
	app := NewApp(&config.Config{}, zerolog.Nop())

	tests := []struct {
		name string
		v    any
		want string
	}{
		{
			name: "missing fields",
			v:    auth.Credentials{},
			want: "email is required; password is required",
		},
		{
			name: "short password",
			v:    auth.SignupRequest{FirstName: "A", LastName: "B", Email: "a@b.co", Password: "123"},
			want: "password must be at least 6 characters",
		},
		{
			name: "bad property type",
			v:    property.Input{Title: "T", Type: "castle", City: "C"},
			want: "type must be one of: house, apartment, condo, land, commercial, villa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.Validate(tt.v)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}

	assert.NoError(t, app.Validate(auth.Credentials{Email: "a@b.co", Password: "x"}))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	got := tokenExpiry(token)
	require.NotNil(t, got)
	assert.True(t, exp.Equal(*got))

	assert.Nil(t, tokenExpiry("opaque-token"))
}

func TestStoreFor(t *testing.T) {
	keyring.MockInit()
	t.Setenv("HOME", t.TempDir())

	store, err := storeFor("memory")("http://localhost:8080")
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)

	store, err = storeFor("keyring")("http://localhost:8080")
	require.NoError(t, err)
	assert.IsType(t, &session.KeyringStore{}, store)

	_, err = storeFor("redis")("http://localhost:8080")
	assert.Error(t, err)
}

func TestSignInRejectsResponsesWithoutCredential(t *testing.T) {
	tests := []struct {
		name    string
		newCmd  func(*App) *cobra.Command
		args    []string
		body    string
		wantErr string
	}{
		{
			name:    "login reported failure",
			newCmd:  NewLoginCmd,
			args:    []string{"--email", "jane@example.com", "--password", "secret1"},
			body:    `{"success":false,"message":"Account is locked"}`,
			wantErr: "Account is locked",
		},
		{
			name:    "login failure without message",
			newCmd:  NewLoginCmd,
			args:    []string{"--email", "jane@example.com", "--password", "secret1"},
			body:    `{"success":false}`,
			wantErr: "Login failed",
		},
		{
			name:    "login without token",
			newCmd:  NewLoginCmd,
			args:    []string{"--email", "jane@example.com", "--password", "secret1"},
			body:    `{"success":true,"data":{"user":{"id":"u1","email":"jane@example.com"}}}`,
			wantErr: "login response carried no token",
		},
		{
			name:    "verify reported failure",
			newCmd:  NewVerifyEmailCmd,
			args:    []string{"--email", "jane@example.com", "--otp", "123456"},
			body:    `{"success":false,"message":"Code already used"}`,
			wantErr: "Code already used",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := session.NewMemoryStore()
			var out bytes.Buffer
			app := NewApp(&config.Config{API: config.APIConfig{URL: srv.URL}}, zerolog.Nop())
			app.Out = &out
			app.OpenStore = func(string) (session.Store, error) { return store, nil }

			cmd := tt.newCmd(app)
			cmd.SetArgs(tt.args)
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SilenceUsage = true

			err := cmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())

			_, err = store.Load()
			assert.ErrorIs(t, err, session.ErrNotFound)
		})
	}
}
