package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/internal/store"
	"github.com/EnpoDev/camlikspor-sub001/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	byEmail     map[string]*model.User
	lookups     int
	lastLogins  map[uint]time.Time
	loginErr    error
	findErr     error
	passwordErr error
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.lookups++
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, userID uint, t time.Time) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	if f.lastLogins == nil {
		f.lastLogins = make(map[uint]time.Time)
	}
	f.lastLogins[userID] = t
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uint, hash string) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	for _, u := range f.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUsers) ListVisible(_ context.Context, _ authz.DealerScope) ([]model.User, error) {
	return nil, nil
}

type fakeDealers struct {
	byID map[uint]*model.Dealer
}

func (f *fakeDealers) Get(_ context.Context, id uint) (*model.Dealer, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDealers) FindBySlug(_ context.Context, slug string) (*model.Dealer, error) {
	for _, d := range f.byID {
		if d.Slug == slug {
			copied := *d
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeDealers) ListChildIDs(_ context.Context, id uint) ([]uint, error) {
	var ids []uint
	for _, d := range f.byID {
		if d.ParentID != nil && *d.ParentID == id {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

type fakeGrants struct {
	byUser map[uint][]authz.Capability
	err    error
}

func (f *fakeGrants) ListCapabilities(_ context.Context, userID uint) ([]authz.Capability, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

const testPassword = "correct-horse-battery"

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

type fixture struct {
	issuer  *Issuer
	users   *fakeUsers
	dealers *fakeDealers
	grants  *fakeGrants
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash := mustHash(t, testPassword)
	parentID := uint(1)

	users := &fakeUsers{byEmail: map[string]*model.User{
		"root@academy.test": {
			ID: 1, Email: "root@academy.test", PasswordHash: hash,
			Role: model.RoleSuperAdmin, Active: true,
		},
		"admin@academy.test": {
			ID: 2, Email: "admin@academy.test", PasswordHash: hash,
			Role: model.RoleDealerAdmin, Active: true, DealerID: ptr(uint(1)),
		},
		"subadmin@academy.test": {
			ID: 3, Email: "subadmin@academy.test", PasswordHash: hash,
			Role: model.RoleDealerAdmin, Active: true, DealerID: ptr(uint(2)),
		},
		"granted@academy.test": {
			ID: 4, Email: "granted@academy.test", PasswordHash: hash,
			Role: model.RoleTrainer, Active: true, DealerID: ptr(uint(1)),
		},
		"disabled@academy.test": {
			ID: 5, Email: "disabled@academy.test", PasswordHash: hash,
			Role: model.RoleTrainer, Active: false, DealerID: ptr(uint(1)),
		},
		"lost@academy.test": {
			ID: 6, Email: "lost@academy.test", PasswordHash: hash,
			Role: model.RoleTrainer, Active: true,
		},
		"subgranted@academy.test": {
			ID: 7, Email: "subgranted@academy.test", PasswordHash: hash,
			Role: model.RoleTrainer, Active: true, DealerID: ptr(uint(2)),
		},
	}}
	dealers := &fakeDealers{byID: map[uint]*model.Dealer{
		1: {ID: 1, Name: "Merkez", Slug: "merkez", Active: true},
		2: {ID: 2, Name: "Sahil", Slug: "sahil", Active: true, ParentID: &parentID},
	}}
	grants := &fakeGrants{byUser: map[uint][]authz.Capability{
		4: {authz.CapReportsView},
		7: {authz.CapSalariesManage, authz.CapStudentsView},
	}}

	cfg := config.AuthConfig{BcryptCost: bcrypt.MinCost, MinPasswordLength: 8}
	return &fixture{
		issuer:  NewIssuer(users, dealers, grants, cfg, zap.NewNop()),
		users:   users,
		dealers: dealers,
		grants:  grants,
	}
}

func ptr[T any](v T) *T { return &v }

func TestAuthenticateTopLevelDealerAdmin(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", testPassword)
	require.NoError(t, err)

	// Full role defaults, no sub-dealer filtering.
	assert.Equal(t, authz.DefaultsForRole(model.RoleDealerAdmin).List(), s.Capabilities())
	assert.False(t, s.SubDealer)

	scope := authz.TenantFilter(s)
	assert.Equal(t, []uint{1}, scope.DealerIDs)
}

func TestAuthenticateSubDealerAdminIsRestricted(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "subadmin@academy.test", testPassword)
	require.NoError(t, err)

	assert.True(t, s.SubDealer)
	expected := authz.DefaultsForRole(model.RoleDealerAdmin).Without(authz.SubDealerRestricted)
	assert.Equal(t, expected.List(), s.Capabilities())
	for c := range authz.SubDealerRestricted {
		assert.False(t, s.HasCapability(c), "sub-dealer session kept %q", c)
	}

	scope := authz.TenantFilter(s)
	assert.Equal(t, []uint{2}, scope.DealerIDs)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, s)
	assert.Empty(t, fx.users.lastLogins, "failed login must not touch last-login")
}

func TestAuthenticateInactiveAccountSameError(t *testing.T) {
	fx := newFixture(t)

	_, wrongPw := fx.issuer.Authenticate(context.Background(), "admin@academy.test", "not-the-password")
	_, inactive := fx.issuer.Authenticate(context.Background(), "disabled@academy.test", testPassword)
	_, unknown := fx.issuer.Authenticate(context.Background(), "nobody@academy.test", testPassword)

	// One undifferentiated failure for all three causes.
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, inactive, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), inactive.Error())
	assert.Equal(t, inactive.Error(), unknown.Error())
}

func TestAuthenticateSuperAdmin(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "root@academy.test", testPassword)
	require.NoError(t, err)

	assert.Nil(t, s.DealerID)
	assert.True(t, authz.TenantFilter(s).Unrestricted)
	for _, c := range authz.All() {
		assert.True(t, s.HasCapability(c), "superadmin missing %q", c)
	}
}

func TestAuthenticateExplicitGrantReplacesDefaults(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "granted@academy.test", testPassword)
	require.NoError(t, err)

	// The single grant is the whole set; role defaults do not merge in.
	assert.Equal(t, []authz.Capability{authz.CapReportsView}, s.Capabilities())
	assert.False(t, s.HasCapability(authz.CapStudentsView))
	assert.False(t, s.HasCapability(authz.CapAttendanceEdit))
}

func TestAuthenticateIsIdempotent(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.issuer.Authenticate(context.Background(), "subadmin@academy.test", testPassword)
	require.NoError(t, err)
	second, err := fx.issuer.Authenticate(context.Background(), "subadmin@academy.test", testPassword)
	require.NoError(t, err)

	assert.Equal(t, first.Capabilities(), second.Capabilities())
	assert.Equal(t, authz.TenantFilter(first), authz.TenantFilter(second))
}

func TestAuthenticateSnapshotsDealerNameAndSlug(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "subadmin@academy.test", testPassword)
	require.NoError(t, err)

	dealer := fx.dealers.byID[2]
	assert.Equal(t, dealer.Name, s.DealerName)
	assert.Equal(t, dealer.Slug, s.DealerSlug)
}

func TestAuthenticateShortPasswordSkipsStore(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", "short")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, fx.users.lookups, "cheap rejection must precede the store lookup")
}

func TestAuthenticateMalformedEmailSkipsStore(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.issuer.Authenticate(context.Background(), "not an email", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, fx.users.lookups)
}

func TestAuthenticateEmailIsCaseSensitive(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.issuer.Authenticate(context.Background(), "Admin@academy.test", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateDealerlessNonAdminFailsClosed(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.issuer.Authenticate(context.Background(), "lost@academy.test", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveDealerFailsClosed(t *testing.T) {
	fx := newFixture(t)
	fx.dealers.byID[2].Active = false

	_, err := fx.issuer.Authenticate(context.Background(), "subadmin@academy.test", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateStoreFailureIsNotCredentialFailure(t *testing.T) {
	fx := newFixture(t)
	fx.users.findErr = errors.New("connection reset")

	_, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", testPassword)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateLastLoginFailureDoesNotFailLogin(t *testing.T) {
	fx := newFixture(t)
	fx.users.loginErr = errors.New("write timeout")

	s, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", testPassword)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestAuthenticateSubDealerFilterTrumpsExplicitGrant(t *testing.T) {
	fx := newFixture(t)

	s, err := fx.issuer.Authenticate(context.Background(), "subgranted@academy.test", testPassword)
	require.NoError(t, err)
	require.True(t, s.SubDealer)

	// An explicit grant of a restricted capability must still be stripped
	// on a sub-dealer session.
	assert.False(t, s.HasCapability(authz.CapSalariesManage))
	assert.True(t, s.HasCapability(authz.CapStudentsView))
	assert.Equal(t, []authz.Capability{authz.CapStudentsView}, s.Capabilities())
}

func TestAuthenticateRecordsLastLogin(t *testing.T) {
	fx := newFixture(t)

	before := time.Now()
	_, err := fx.issuer.Authenticate(context.Background(), "admin@academy.test", testPassword)
	require.NoError(t, err)

	recorded, ok := fx.users.lastLogins[2]
	require.True(t, ok)
	assert.False(t, recorded.Before(before))
}

func TestChangePasswordRotatesHash(t *testing.T) {
	fx := newFixture(t)

	err := fx.issuer.ChangePassword(context.Background(), "admin@academy.test", testPassword, "next-horse-battery")
	require.NoError(t, err)

	stored := fx.users.byEmail["admin@academy.test"].PasswordHash
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("next-horse-battery")))

	_, err = fx.issuer.Authenticate(context.Background(), "admin@academy.test", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "old password must stop working")
}

func TestChangePasswordWrongCurrentPassword(t *testing.T) {
	fx := newFixture(t)
	before := fx.users.byEmail["admin@academy.test"].PasswordHash

	err := fx.issuer.ChangePassword(context.Background(), "admin@academy.test", "not-the-password", "next-horse-battery")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, before, fx.users.byEmail["admin@academy.test"].PasswordHash)
}

func TestChangePasswordTooShortSkipsStore(t *testing.T) {
	fx := newFixture(t)

	err := fx.issuer.ChangePassword(context.Background(), "admin@academy.test", testPassword, "tiny")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Zero(t, fx.users.lookups)
}

func TestChangePasswordInactiveAccount(t *testing.T) {
	fx := newFixture(t)

	err := fx.issuer.ChangePassword(context.Background(), "disabled@academy.test", testPassword, "next-horse-battery")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
