package store

import (
	"context"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormGrantStore implements GrantStore on top of gorm.
type GormGrantStore struct {
	db *gorm.DB
}

// NewGrantStore creates a gorm-backed grant store.
func NewGrantStore(db *gorm.DB) *GormGrantStore {
	return &GormGrantStore{db: db}
}

func (s *GormGrantStore) ListCapabilities(ctx context.Context, userID uint) ([]authz.Capability, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var rows []model.PermissionGrant
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("capability").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	caps := make([]authz.Capability, 0, len(rows))
	for _, row := range rows {
		c := authz.Capability(row.Capability)
		if !authz.Valid(c) {
			// Rows outside the catalog are stale data from a removed
			// capability; skip them rather than widening the session.
			logger.GetLogger().Warn("Skipping unknown capability grant",
				zap.Uint("user_id", userID),
				zap.String("capability", row.Capability))
			continue
		}
		caps = append(caps, c)
	}
	return caps, nil
}
