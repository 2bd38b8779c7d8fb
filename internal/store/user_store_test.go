package store

import (
	"context"
	"testing"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestUserStoreFindByEmail(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "active", "dealer_id"}).
		AddRow(2, "admin@academy.test", "$2a$10$hash", "Merkez Admin", "dealer_admin", true, 1)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+ AND "users"."deleted_at" IS NULL`).
		WillReturnRows(rows)

	user, err := s.FindByEmail(context.Background(), "admin@academy.test")
	require.NoError(t, err)
	assert.Equal(t, uint(2), user.ID)
	assert.Equal(t, "admin@academy.test", user.Email)
	require.NotNil(t, user.DealerID)
	assert.Equal(t, uint(1), *user.DealerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreFindByEmailNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindByEmail(context.Background(), "nobody@academy.test")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreUpdateLastLogin(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "last_login_at"=.+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateLastLogin(context.Background(), 2, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreUpdatePassword(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET "password_hash"=.+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdatePassword(context.Background(), 2, "$2a$10$replacement")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreListVisibleAppliesDealerScope(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	rows := sqlmock.NewRows([]string{"id", "email", "role", "dealer_id"}).
		AddRow(2, "admin@academy.test", "dealer_admin", 1).
		AddRow(3, "subadmin@academy.test", "dealer_admin", 2)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE dealer_id IN .+`).
		WillReturnRows(rows)

	users, err := s.ListVisible(context.Background(), authz.DealerScope{DealerIDs: []uint{1, 2}})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreListVisibleUnrestrictedHasNoDealerPredicate(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	rows := sqlmock.NewRows([]string{"id", "email", "role"}).
		AddRow(1, "root@academy.test", "superadmin")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."deleted_at" IS NULL`).
		WillReturnRows(rows)

	users, err := s.ListVisible(context.Background(), authz.DealerScope{Unrestricted: true})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreListVisibleEmptyScopeMatchesNothing(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := NewUserStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE 1 = 0`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, err := s.ListVisible(context.Background(), authz.DealerScope{})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
