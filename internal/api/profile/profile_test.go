package profile

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

func TestGet_WithoutTokenUnauthorized(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Not authorized, no token"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	s := session.New(store)
	svc := New(client.New(srv.URL, client.WithSession(s)))

	res := svc.Get(context.Background())

	assert.False(t, sawAuth, "no Authorization header without a token")
	assert.False(t, res.Success)
	assert.Equal(t, "Not authorized, no token", res.Message)
	assert.True(t, client.IsUnauthorized(res.Err))

	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNotFound, "storage untouched")
}

func TestGet_FallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := New(client.New(srv.URL)).Get(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to get profile", res.Message)
	assert.Empty(t, res.Data.ID)
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":{"id":"u1","email":"jane@example.com","firstName":"Jane","role":"user"}}`))
	}))
	defer srv.Close()

	s := session.New(nil)
	require.NoError(t, s.Set("t1", nil, false))

	res := New(client.New(srv.URL, client.WithSession(s))).Get(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, "Jane", res.Data.FirstName)
	assert.Empty(t, res.Message)
	assert.NoError(t, res.Err)
}

func TestUpdate_SendsPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/profile", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Smith", body["lastName"])
		assert.NotContains(t, body, "firstName")

		w.Write([]byte(`{"success":true,"data":{"id":"u1","lastName":"Smith"}}`))
	}))
	defer srv.Close()

	res := New(client.New(srv.URL)).Update(context.Background(), UpdateRequest{LastName: "Smith"})
	require.True(t, res.Success)
	assert.Equal(t, "Smith", res.Data.LastName)
}

func TestUpdate_NetworkErrorNeverPanicsOrErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	res := New(client.New(srv.URL)).Update(context.Background(), UpdateRequest{Bio: "hi"})
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to update profile", res.Message)
	assert.Error(t, res.Err)
}
