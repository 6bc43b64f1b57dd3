package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding the session
const DefaultRedisKey = "voltmarket:session"

// RedisStore keeps the session in one Redis hash. Writes replace the whole hash
// inside MULTI/EXEC so readers never observe a mix of old and new fields.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store using key (DefaultRedisKey when empty)
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session hash: %w", err)
	}
	if len(fields) == 0 {
		return Session{}, nil
	}

	var userID int64
	if raw := fields["user_id"]; raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Session{}, fmt.Errorf("malformed user_id in session hash: %w", err)
		}
	}

	return Session{
		Token:     fields["token"],
		UserID:    userID,
		Email:     fields["email"],
		FirstName: fields["first_name"],
		LastName:  fields["last_name"],
		AvatarURL: fields["avatar_url"],
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, map[string]any{
			"token":      sess.Token,
			"user_id":    strconv.FormatInt(sess.UserID, 10),
			"email":      sess.Email,
			"first_name": sess.FirstName,
			"last_name":  sess.LastName,
			"avatar_url": sess.AvatarURL,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session hash: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session hash: %w", err)
	}
	return nil
}
