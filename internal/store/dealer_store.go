package store

import (
	"context"
	"errors"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"gorm.io/gorm"
)

// GormDealerStore implements DealerStore on top of gorm.
type GormDealerStore struct {
	db *gorm.DB
}

// NewDealerStore creates a gorm-backed dealer store.
func NewDealerStore(db *gorm.DB) *GormDealerStore {
	return &GormDealerStore{db: db}
}

func (s *GormDealerStore) Get(ctx context.Context, id uint) (*model.Dealer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var dealer model.Dealer
	result := s.db.WithContext(ctx).First(&dealer, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &dealer, nil
}

func (s *GormDealerStore) FindBySlug(ctx context.Context, slug string) (*model.Dealer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var dealer model.Dealer
	result := s.db.WithContext(ctx).Where("slug = ?", slug).First(&dealer)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &dealer, nil
}

func (s *GormDealerStore) ListChildIDs(ctx context.Context, id uint) ([]uint, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var ids []uint
	result := s.db.WithContext(ctx).Model(&model.Dealer{}).
		Where("parent_id = ?", id).
		Order("id").
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}
