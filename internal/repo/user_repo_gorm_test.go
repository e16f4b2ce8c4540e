package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-user-admin/internal/domain"
	"go-user-admin/internal/repo"
)

func setupRepo(t *testing.T) (*repo.UserRepo, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Error mocking DB")

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "Expectations were not met")
		sqlDB.Close()
	})
	return repo.NewUserRepo(db), mock
}

func TestListRows(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT u\.user_id AS id, u\.name AS name`).
		WithArgs("admin", "developer").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "role", "description"}).
			AddRow("developer", "Zhang San", "developer", "Developer").
			AddRow("admin", "Li Si", "admin", "Administrator").
			AddRow("alice", "Alice", "editor", "Editor"))

	rows, err := r.ListRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.UserRow{
		{ID: "developer", Name: "Zhang San", Role: "developer", Description: "Developer"},
		{ID: "admin", Name: "Li Si", Role: "admin", Description: "Administrator"},
		{ID: "alice", Name: "Alice", Role: "editor", Description: "Editor"},
	}, rows)
}

func TestListRowsError(t *testing.T) {
	r, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT u\.user_id AS id`).WillReturnError(errors.New("db error"))

	rows, err := r.ListRows(context.Background())
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestFindByIDNotFound(t *testing.T) {
	r, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name"}))

	u, err := r.FindByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindByIDFound(t *testing.T) {
	r, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "password_hash"}).
			AddRow("alice", "Alice", "$2a$04$hash"))

	u, err := r.FindByID(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Alice", u.Name)
}

func TestDeleteRemovesLinksAndUserInOneTransaction(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_roles" WHERE user_id = \$1`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users" WHERE user_id = \$1`).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := r.Delete(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteRollsBackOnError(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "user_roles"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users"`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := r.Delete(context.Background(), "alice")
	assert.Error(t, err)
}

func TestCreateInsertsUserAndRole(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "user_roles"`).
		WithArgs("bob", "guest").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Create(context.Background(), &domain.User{UserID: "bob", Name: "Bob", PasswordHash: "h"}, "guest")
	assert.NoError(t, err)
}

func TestCreateDuplicate(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_pkey"`))
	mock.ExpectRollback()

	err := r.Create(context.Background(), &domain.User{UserID: "admin", Name: "x"}, "guest")
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUpdateReplacesRole(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "user_roles" WHERE user_id = \$1 AND role_name IN \(\$2,\$3\)`).
		WithArgs("alice", "admin", "editor").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "user_roles"`).
		WithArgs("alice", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Update(context.Background(), domain.UserUpdate{UserID: "alice", Name: "Alice", Role: "admin", PrevRole: "editor"})
	assert.NoError(t, err)
}

func TestUpdateSameRoleKeepsOtherLinks(t *testing.T) {
	r, mock := setupRepo(t)

	// developer 还挂着 admin；只改名时不碰 user_roles
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Update(context.Background(), domain.UserUpdate{
		UserID: "developer", Name: "Dev", Role: "developer", PrevRole: "developer",
	})
	assert.NoError(t, err)
}

func TestUpdateWithoutPrevRoleOnlyAddsLink(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "user_roles" WHERE user_id = \$1 AND role_name IN \(\$2\)`).
		WithArgs("developer", "editor").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "user_roles"`).
		WithArgs("developer", "editor").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.Update(context.Background(), domain.UserUpdate{UserID: "developer", Name: "Dev", Role: "editor"})
	assert.NoError(t, err)
}

func TestUpdateUnknownUser(t *testing.T) {
	r, mock := setupRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := r.Update(context.Background(), domain.UserUpdate{UserID: "ghost", Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRoleExists(t *testing.T) {
	r, mock := setupRepo(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "roles" WHERE role_name = \$1`).
		WithArgs("editor").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := r.RoleExists(context.Background(), "editor")
	require.NoError(t, err)
	assert.True(t, ok)
}
