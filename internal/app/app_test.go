package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/voltmarket/internal/config"
	"github.com/tair/voltmarket/internal/session"
)

func testConfig(backend, dsn string) *config.Config {
	return &config.Config{
		Environment: "test",
		API:         config.APIConfig{BaseURL: "http://localhost:8080/api/"},
		Session:     config.SessionConfig{Backend: backend, DSN: dsn},
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	a, cleanup, err := New(testConfig(config.BackendMemory, ""))
	require.NoError(t, err)
	defer cleanup()

	assert.False(t, a.Sessions.LoggedIn())
	assert.NotNil(t, a.Client)
	assert.NotNil(t, a.Login())
	assert.NotNil(t, a.Catalog())
}

func TestNew_SQLiteSessionSurvivesRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "session.db")
	cfg := testConfig(config.BackendSQLite, dsn)
	cfg.Session.Key = make([]byte, 32)

	first, cleanup, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Sessions.Save(context.Background(), session.Session{Token: "jwt", UserID: 3, Email: "a@b.co"}))
	cleanup()

	second, cleanup, err := New(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.True(t, second.Sessions.LoggedIn())
	assert.Equal(t, "jwt", second.Sessions.Token())
}

func TestNew_InvalidInputs(t *testing.T) {
	t.Run("bad key", func(t *testing.T) {
		cfg := testConfig(config.BackendMemory, "")
		cfg.Session.Key = []byte("short")
		_, _, err := New(cfg)
		assert.Error(t, err)
	})

	t.Run("bad api url", func(t *testing.T) {
		cfg := testConfig(config.BackendMemory, "")
		cfg.API.BaseURL = "::"
		_, _, err := New(cfg)
		assert.Error(t, err)
	})
}
