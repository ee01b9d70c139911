package leave

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newRepoFixture(t *testing.T) (Repository, *gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return NewRepository(gdb), gdb, mock, func() { db.Close() }
}

// Ordered expectations pin the status update between BEGIN and COMMIT of
// the transaction the repository was bound to.
func TestWithTx_TransitionRunsInsideTransaction(t *testing.T) {
	repo, gdb, mock, closeDB := newRepoFixture(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "leave_requests" SET "status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx := gdb.Begin()
	assert.NoError(t, tx.Error)

	ok, err := repo.WithTx(tx).Transition(context.Background(), uuid.NewString(), StatusProcessing, StatusApproved)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, tx.Commit().Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindApprovedEndedBefore_UsesOpenEndedWindow(t *testing.T) {
	repo, _, mock, closeDB := newRepoFixture(t)
	defer closeDB()

	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "leave_requests" WHERE status = \$1 AND end_date < \$2`).
		WithArgs(StatusApproved, "2026-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(uuid.New(), StatusApproved))

	rows, err := repo.FindApprovedEndedBefore(context.Background(), today)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
