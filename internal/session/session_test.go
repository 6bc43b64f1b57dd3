package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/pkg/database"
)

var ana = Session{
	Token:     "tok-ana",
	UserID:    7,
	Email:     "ana@example.com",
	FirstName: "Ana",
	LastName:  "Pérez",
}

type failingStore struct {
	MemoryStore
	err error
}

func (s *failingStore) Save(ctx context.Context, sess Session) error { return s.err }
func (s *failingStore) Clear(ctx context.Context) error              { return s.err }

func TestManager_SaveAndClear(t *testing.T) {
	ctx := context.Background()

	t.Run("complete session logs in and installs credential", func(t *testing.T) {
		m := NewManager(NewMemoryStore())

		require.NoError(t, m.Save(ctx, ana))
		assert.True(t, m.LoggedIn())
		assert.Equal(t, "tok-ana", m.Token())

		id, ok := m.UserID()
		assert.True(t, ok)
		assert.Equal(t, int64(7), id)
	})

	t.Run("token without user id is stored as logged out", func(t *testing.T) {
		store := NewMemoryStore()
		m := NewManager(store)
		require.NoError(t, m.Save(ctx, ana))

		require.NoError(t, m.Save(ctx, Session{Token: "orphan"}))
		assert.False(t, m.LoggedIn())
		assert.Equal(t, Session{}, m.Current())

		persisted, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Session{}, persisted)
	})

	t.Run("user id without token is stored as logged out", func(t *testing.T) {
		m := NewManager(NewMemoryStore())

		require.NoError(t, m.Save(ctx, Session{UserID: 3, Email: "x@example.com"}))
		assert.False(t, m.LoggedIn())
		assert.Empty(t, m.Current().Email)
	})

	t.Run("clear drops every field and the credential", func(t *testing.T) {
		store := NewMemoryStore()
		m := NewManager(store)
		require.NoError(t, m.Save(ctx, ana))

		require.NoError(t, m.Clear(ctx))
		assert.False(t, m.LoggedIn())
		assert.Empty(t, m.Token())
		assert.Equal(t, Session{}, m.Current())

		persisted, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Session{}, persisted)
	})

	t.Run("persistence failure keeps previous session", func(t *testing.T) {
		store := &failingStore{}
		m := NewManager(store)
		require.NoError(t, store.MemoryStore.Save(ctx, ana))
		_, err := m.Load(ctx)
		require.NoError(t, err)

		store.err = errors.New("disk full")
		err = m.Save(ctx, Session{Token: "new", UserID: 9})
		require.Error(t, err)
		assert.Equal(t, "tok-ana", m.Token())

		err = m.Clear(ctx)
		require.Error(t, err)
		assert.True(t, m.LoggedIn())
	})
}

func TestManager_Load(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Session{Token: "half"}))

	m := NewManager(store)
	s, err := m.Load(ctx)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
	assert.Empty(t, m.Token())
}

func TestFromAuth(t *testing.T) {
	s := FromAuth(&domain.AuthResponse{Token: "t", UserID: 4, Email: "e@x.io", FirstName: "E", LastName: "X"})
	assert.Equal(t, Session{Token: "t", UserID: 4, Email: "e@x.io", FirstName: "E", LastName: "X"}, s)
}

func TestSession_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	got, err := Session{Token: token, UserID: 7}.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = Session{Token: noExp, UserID: 7}.ExpiresAt()
	assert.ErrorIs(t, err, ErrNoExpiry)

	_, err = Session{}.ExpiresAt()
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLStore(db)
	require.NoError(t, store.Migrate(ctx))

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, empty)

	require.NoError(t, store.Save(ctx, ana))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ana, loaded)

	replaced := Session{Token: "tok-bob", UserID: 8, Email: "bob@example.com"}
	require.NoError(t, store.Save(ctx, replaced))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replaced, loaded)

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, loaded)
}

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	sealer, err := NewSealer(key)
	require.NoError(t, err)

	inner := NewMemoryStore()
	store := NewSealedStore(inner, sealer)

	require.NoError(t, store.Save(ctx, ana))

	raw, err := inner.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, ana.Token, raw.Token)
	assert.Equal(t, ana.UserID, raw.UserID)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ana, loaded)

	require.NoError(t, inner.Save(ctx, Session{Token: "not-sealed", UserID: 1}))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrSealedToken)

	_, err = NewSealer([]byte("short"))
	assert.Error(t, err)
}

func TestTracingStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewTracingStore(NewMemoryStore(), "memory")

	require.NoError(t, store.Save(ctx, ana))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ana, loaded)
	require.NoError(t, store.Clear(ctx))
}
