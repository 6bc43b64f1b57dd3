//go:build integration
// +build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tair/voltmarket/pkg/database"
)

// setupPostgres starts a PostgreSQL container and returns its connection string
func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("voltmarket"),
		postgres.WithUsername("voltmarket"),
		postgres.WithPassword("voltmarket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func assertReplacesAndClears(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, empty)

	withAvatar := ana
	withAvatar.AvatarURL = "https://cdn.example.com/ana.png"
	require.NoError(t, store.Save(ctx, withAvatar))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, withAvatar, loaded)

	replaced := Session{Token: "tok-bob", UserID: 8, Email: "bob@example.com"}
	require.NoError(t, store.Save(ctx, replaced))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replaced, loaded, "no field of the first session survives")

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, loaded)
}

func TestPostgresStores(t *testing.T) {
	dsn := setupPostgres(t)

	t.Run("gorm", func(t *testing.T) {
		db, err := database.OpenGorm(dsn)
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()

		store := NewGormStore(db)
		require.NoError(t, store.AutoMigrate())
		require.NoError(t, store.AutoMigrate(), "migration is repeatable")

		assertReplacesAndClears(t, store)

		var rows int64
		require.NoError(t, db.Model(&sessionRecord{}).Count(&rows).Error)
		assert.Zero(t, rows)
	})

	t.Run("sqlx", func(t *testing.T) {
		db, err := database.Open(database.Config{Driver: database.DriverPostgres, DSN: dsn})
		require.NoError(t, err)
		defer db.Close()

		store := NewSQLStore(db)
		require.NoError(t, store.Migrate(context.Background()))

		assertReplacesAndClears(t, store)
	})
}
