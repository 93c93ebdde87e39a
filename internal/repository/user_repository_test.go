package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"userauth/internal/model"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func userRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(id, "Ann", "ann@x.com", "hash", now, now)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO `users`").WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Len(t, user.ID, 36, "store assigns a UUID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'ann@x.com' for key 'idx_users_email'"})

	err := repo.Create(context.Background(), &model.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(userRow(id))

	user, err := repo.FindByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.PasswordHash)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE email = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.FindByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_DriverError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnError(sql.ErrConnDone)

	_, err := repo.FindByID(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(userRow(id))
	mock.ExpectExec("UPDATE `users` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.Update(context.Background(), id, UserPatch{Name: "Annie", Email: "annie@x.com"})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Annie", user.Name)
	assert.Equal(t, "annie@x.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7", UserPatch{Name: "Annie", Email: "annie@x.com"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(userRow(id))
	mock.ExpectExec("UPDATE `users` SET").WillReturnError(&mysqldriver.MySQLError{Number: 1062})
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), id, UserPatch{Name: "Ann", Email: "taken@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(userRow(id))
	mock.ExpectExec("DELETE FROM `users` WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", user.Email)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectRollback()

	_, err = repo.DeleteByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
