package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/internal/store"
	"github.com/EnpoDev/camlikspor-sub001/pkg/config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown email, wrong password and inactive
// accounts alike. The caller gets one undifferentiated failure so sign-in
// responses cannot be used to enumerate accounts; the distinction lives
// only in server-side logs.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrPasswordTooShort rejects a new password below the configured
// minimum length before any hashing work.
var ErrPasswordTooShort = errors.New("auth: password too short")

// Issuer authenticates credentials and produces resolved session
// snapshots. It is the only component that computes a capability set;
// everything downstream reads the snapshot.
type Issuer struct {
	users   store.UserStore
	dealers store.DealerStore
	grants  store.GrantStore
	cfg     config.AuthConfig
	log     *zap.Logger
}

// NewIssuer creates a session issuer.
func NewIssuer(users store.UserStore, dealers store.DealerStore, grants store.GrantStore, cfg config.AuthConfig, log *zap.Logger) *Issuer {
	return &Issuer{
		users:   users,
		dealers: dealers,
		grants:  grants,
		cfg:     cfg,
		log:     log,
	}
}

// Authenticate verifies a credential pair and resolves the session
// snapshot: role, dealer, denormalized dealer name and slug, and the
// effective capability set with the sub-dealer restriction already
// applied. No partial session is ever returned; any failure along the
// way yields a nil session.
func (i *Issuer) Authenticate(ctx context.Context, email, password string) (*authz.Session, error) {
	// Cheap syntactic rejection before any store lookup or hash work.
	if len(password) < i.minPasswordLength() {
		return nil, ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Exact, case-sensitive lookup; the email column's collation decides
	// uniqueness and this core does not second-guess it.
	user, err := i.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			i.log.Warn("Login attempt for unknown email", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	if !user.Active {
		i.log.Warn("Login attempt for inactive account", zap.Uint("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	// bcrypt comparison is constant-time and intentionally slow; the
	// latency floor is the brute-force deterrent.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		i.log.Warn("Login attempt with wrong password", zap.Uint("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	session, err := i.resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	// Last-login is informational; a lost update never fails the login.
	if err := i.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		i.log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return session, nil
}

// resolve computes the session snapshot for an already-verified user.
func (i *Issuer) resolve(ctx context.Context, user *model.User) (*authz.Session, error) {
	caps, err := i.resolveCapabilities(ctx, user)
	if err != nil {
		return nil, err
	}

	var dealer *model.Dealer
	if user.DealerID != nil {
		dealer, err = i.dealers.Get(ctx, *user.DealerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				i.log.Error("User references missing dealer",
					zap.Uint("user_id", user.ID),
					zap.Uint("dealer_id", *user.DealerID))
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("dealer lookup failed: %w", err)
		}
		if !dealer.Active {
			i.log.Warn("Login attempt under inactive dealer",
				zap.Uint("user_id", user.ID),
				zap.Uint("dealer_id", dealer.ID))
			return nil, ErrInvalidCredentials
		}
		if dealer.IsSub() {
			caps = caps.Without(authz.SubDealerRestricted)
		}
	} else if user.Role != model.RoleSuperAdmin {
		// Only the platform operator may run dealer-less.
		i.log.Error("Non-superadmin account without a dealer", zap.Uint("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return authz.NewSession(user, dealer, caps), nil
}

// resolveCapabilities returns the explicit grants when any exist,
// otherwise the role defaults. Grants replace the defaults outright;
// they never merge.
func (i *Issuer) resolveCapabilities(ctx context.Context, user *model.User) (authz.CapabilitySet, error) {
	granted, err := i.grants.ListCapabilities(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if len(granted) > 0 {
		return authz.NewSet(granted...), nil
	}
	return authz.DefaultsForRole(user.Role), nil
}

// ChangePassword verifies the current password for the given account and
// stores a hash of the new one. A wrong current password yields the same
// generic failure as sign-in.
func (i *Issuer) ChangePassword(ctx context.Context, email, current, next string) error {
	if len(next) < i.minPasswordLength() {
		return ErrPasswordTooShort
	}

	user, err := i.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("identity lookup failed: %w", err)
	}

	if !user.Active {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		i.log.Warn("Password change with wrong current password", zap.Uint("user_id", user.ID))
		return ErrInvalidCredentials
	}

	hash, err := i.HashPassword(next)
	if err != nil {
		return fmt.Errorf("password hashing failed: %w", err)
	}

	if err := i.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("password update failed: %w", err)
	}

	i.log.Info("Password changed", zap.Uint("user_id", user.ID))
	return nil
}

// HashPassword hashes a plaintext password at the configured bcrypt cost.
func (i *Issuer) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), i.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (i *Issuer) minPasswordLength() int {
	if i.cfg.MinPasswordLength > 0 {
		return i.cfg.MinPasswordLength
	}
	return 8
}
