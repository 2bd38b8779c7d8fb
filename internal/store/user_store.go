package store

import (
	"context"
	"errors"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"gorm.io/gorm"
)

// GormUserStore implements UserStore on top of gorm.
type GormUserStore struct {
	db *gorm.DB
}

// NewUserStore creates a gorm-backed user store.
func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	result := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormUserStore) UpdateLastLogin(ctx context.Context, userID uint, t time.Time) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login_at", t).Error
}

func (s *GormUserStore) UpdatePassword(ctx context.Context, userID uint, hash string) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}

func (s *GormUserStore) ListVisible(ctx context.Context, scope authz.DealerScope) ([]model.User, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var users []model.User
	q := scope.Apply(s.db.WithContext(ctx).Model(&model.User{}))
	if result := q.Order("id").Find(&users); result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}
