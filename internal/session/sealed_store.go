package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealedToken is returned when a stored token cannot be decrypted
var ErrSealedToken = errors.New("stored token cannot be opened")

// Sealer encrypts tokens at rest with XChaCha20-Poly1305
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a sealer from a 32-byte key
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create token sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext into base64(nonce || ciphertext)
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal
func (s *Sealer) Open(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedToken, err)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", fmt.Errorf("%w: too short", ErrSealedToken)
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedToken, err)
	}
	return string(plain), nil
}

// SealedStore wraps a Store so the token is encrypted before it reaches the backend
type SealedStore struct {
	Store
	sealer *Sealer
}

// NewSealedStore creates a sealing decorator
func NewSealedStore(inner Store, sealer *Sealer) *SealedStore {
	return &SealedStore{Store: inner, sealer: sealer}
}

func (s *SealedStore) Load(ctx context.Context) (Session, error) {
	sess, err := s.Store.Load(ctx)
	if err != nil || sess.Token == "" {
		return sess, err
	}

	token, err := s.sealer.Open(sess.Token)
	if err != nil {
		return Session{}, err
	}
	sess.Token = token
	return sess, nil
}

func (s *SealedStore) Save(ctx context.Context, sess Session) error {
	sealed, err := s.sealer.Seal(sess.Token)
	if err != nil {
		return err
	}
	sess.Token = sealed
	return s.Store.Save(ctx, sess)
}
