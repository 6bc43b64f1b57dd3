package session

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRecord is the gorm model of the stored session
type sessionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false"`
	Token     string `gorm:"not null"`
	UserID    int64  `gorm:"not null"`
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// TableName specifies the table name
func (sessionRecord) TableName() string {
	return "device_sessions"
}

// GormStore persists the session through gorm
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the session table
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&sessionRecord{})
}

func (s *GormStore) Load(ctx context.Context) (Session, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, sessionRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session record: %w", err)
	}

	return Session{
		Token:     rec.Token,
		UserID:    rec.UserID,
		Email:     rec.Email,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		AvatarURL: rec.AvatarURL,
	}, nil
}

func (s *GormStore) Save(ctx context.Context, sess Session) error {
	rec := sessionRecord{
		ID:        sessionRowID,
		Token:     sess.Token,
		UserID:    sess.UserID,
		Email:     sess.Email,
		FirstName: sess.FirstName,
		LastName:  sess.LastName,
		AvatarURL: sess.AvatarURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&sessionRecord{}, sessionRowID).Error; err != nil {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
