package store

import (
	"context"
	"errors"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: record not found")

// UserStore is the identity-store boundary consumed by the session issuer
// and the user-management handlers.
type UserStore interface {
	// FindByEmail looks a user up by exact, case-sensitive email match.
	// Soft-deleted users are not returned.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateLastLogin records an authentication timestamp. Last-write-wins
	// under concurrent logins is acceptable.
	UpdateLastLogin(ctx context.Context, userID uint, t time.Time) error
	// UpdatePassword replaces the stored credential hash.
	UpdatePassword(ctx context.Context, userID uint, hash string) error
	// ListVisible returns the users inside the given dealer scope.
	ListVisible(ctx context.Context, scope authz.DealerScope) ([]model.User, error)
}

// DealerStore is the dealer-hierarchy boundary.
type DealerStore interface {
	Get(ctx context.Context, id uint) (*model.Dealer, error)
	FindBySlug(ctx context.Context, slug string) (*model.Dealer, error)
	// ListChildIDs returns the ids of dealers whose parent is the given
	// dealer. One level only; the hierarchy is two levels deep in practice.
	ListChildIDs(ctx context.Context, id uint) ([]uint, error)
}

// GrantStore reads explicit capability grants. This core never writes
// grants; the user-management screens own mutation.
type GrantStore interface {
	// ListCapabilities returns the user's explicit grants. An empty slice
	// means the role defaults apply.
	ListCapabilities(ctx context.Context, userID uint) ([]authz.Capability, error)
}
