package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS device_session (
	id         INTEGER PRIMARY KEY,
	token      TEXT NOT NULL,
	user_id    BIGINT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	avatar_url TEXT NOT NULL DEFAULT ''
)`

// The table holds at most one row, the device's session.
const sessionRowID = 1

type sessionRow struct {
	ID        int64  `db:"id"`
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	Email     string `db:"email"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	AvatarURL string `db:"avatar_url"`
}

// SQLStore persists the session in a single-row table through sqlx.
// Works with sqlite3 on device and postgres.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a store over an open connection
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the session table if needed
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sessionSchema); err != nil {
		return fmt.Errorf("failed to migrate session table: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context) (Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT id, token, user_id, email, first_name, last_name, avatar_url
		 FROM device_session WHERE id = ?`), sessionRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session row: %w", err)
	}

	return Session{
		Token:     row.Token,
		UserID:    row.UserID,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		AvatarURL: row.AvatarURL,
	}, nil
}

func (s *SQLStore) Save(ctx context.Context, sess Session) error {
	row := sessionRow{
		ID:        sessionRowID,
		Token:     sess.Token,
		UserID:    sess.UserID,
		Email:     sess.Email,
		FirstName: sess.FirstName,
		LastName:  sess.LastName,
		AvatarURL: sess.AvatarURL,
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO device_session (id, token, user_id, email, first_name, last_name, avatar_url)
		VALUES (:id, :token, :user_id, :email, :first_name, :last_name, :avatar_url)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			avatar_url = excluded.avatar_url`, row)
	if err != nil {
		return fmt.Errorf("failed to write session row: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM device_session WHERE id = ?`), sessionRowID); err != nil {
		return fmt.Errorf("failed to delete session row: %w", err)
	}
	return nil
}
