package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: conn,
		// sqlmock cannot answer the version query gorm issues on connect
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestListActiveFiltersSoftDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name"}).
		AddRow(uuid.New(), userID, "Dana")
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "employees" WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at ASC`,
	)).WithArgs(userID).WillReturnRows(rows)

	employees, err := repo.ListActive(userID)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Dana", employees[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteStampsTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	id := uuid.New()
	at := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "employees" SET "deleted_at"=$1,"updated_at"=$2 WHERE id = $3`,
	)).WithArgs(at, sqlmock.AnyArg(), id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SoftDelete(id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerPicksFirstCreated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmployeeRepository(db)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "role"}).
		AddRow(uuid.New(), userID, "Morgan", "manager")
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "employees" WHERE user_id = $1 AND role = $2 AND deleted_at IS NULL ORDER BY created_at ASC,"employees"."id" LIMIT $3`,
	)).WithArgs(userID, "manager", 1).WillReturnRows(rows)

	manager, err := repo.Manager(userID)
	require.NoError(t, err)
	assert.Equal(t, "Morgan", manager.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
