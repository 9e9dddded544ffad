package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSession_SetAndClear(t *testing.T) {
	store := NewMemoryStore()
	s := New(store)
	assert.False(t, s.Authenticated())

	user := &User{ID: "u1", Email: "jane@example.com", FirstName: "Jane", Role: RoleAdmin}
	require.NoError(t, s.Set("t1", user, true))

	assert.Equal(t, "t1", s.Token())
	assert.True(t, s.IsAdmin())
	assert.Equal(t, "Jane", s.User().Name())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "t1", persisted.Token)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.IsAdmin())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_SetRequiresToken(t *testing.T) {
	s := New(nil)
	assert.Error(t, s.Set("", nil, false))
}

func TestSession_UserIsCopied(t *testing.T) {
	s := New(nil)
	user := &User{Email: "a@b.c"}
	require.NoError(t, s.Set("t", user, false))

	user.Email = "changed"
	got := s.User()
	got.Role = "mutated"

	assert.Equal(t, "a@b.c", s.User().Email)
	assert.Empty(t, s.User().Role)
}

func TestOpen_EmptyStore(t *testing.T) {
	s, err := Open(NewMemoryStore())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New(NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set("token", &User{Email: "x@y.z"}, false)
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()

	assert.Equal(t, "token", s.Token())
}

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	store, err := NewKeyringStore("https://api.example.com", dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	s := New(store)
	require.NoError(t, s.Set("secret", &User{Email: "jane@example.com", Role: "user"}, false))

	// The token must never land in the JSON file
	data, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), "jane@example.com")

	reopened, err := Open(store)
	require.NoError(t, err)
	assert.Equal(t, "secret", reopened.Token())
	assert.Equal(t, "jane@example.com", reopened.User().Email)

	require.NoError(t, reopened.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyringStore_SeparatesOrigins(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	a, err := NewKeyringStore("https://a.example.com", dir)
	require.NoError(t, err)
	b, err := NewKeyringStore("https://b.example.com", dir)
	require.NoError(t, err)

	require.NoError(t, a.Save(State{Token: "ta", Admin: true}))
	require.NoError(t, b.Save(State{Token: "tb"}))
	require.NoError(t, b.Delete())

	state, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, "ta", state.Token)
	assert.True(t, state.Admin)
}
