package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

// Token rotation must be one UPDATE guarded by the calendar's primary key, so
// concurrent regenerations serialize on the row instead of interleaving.
func TestGormCalendarRepository_UpdateShareURL_SingleGuardedUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCalendarRepository(db)

	token := "fresh-token"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `calendars` SET `share_url`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(token, sqlmock.AnyArg(), uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateShareURL(42, &token))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCalendarRepository_UpdateShareURL_RevokeSetsNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCalendarRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `calendars` SET `share_url`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(nil, sqlmock.AnyArg(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateShareURL(7, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
