package loans

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "loans.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Loan{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func date(s string) time.Time {
	d, ok := entities.ParseDate(s)
	if !ok {
		panic("bad test date " + s)
	}
	return d
}

func createLoan(t *testing.T, repo *Repository, bookID uint, patronID, loanedOn, returnBy string) *entities.Loan {
	t.Helper()
	loan := &entities.Loan{
		BookID:   bookID,
		PatronID: patronID,
		LoanedOn: date(loanedOn),
		ReturnBy: date(returnBy),
	}
	require.NoError(t, repo.CreateLoan(context.Background(), loan))
	return loan
}

func TestRepository_CreateLoan_IsOpen(t *testing.T) {
	repo := setupTestDB(t)
	returned := date("01/01/2024")

	loan := &entities.Loan{
		BookID:     1,
		PatronID:   "P100",
		LoanedOn:   date("03/01/2024"),
		ReturnBy:   date("03/08/2024"),
		CheckedOut: false,
		ReturnedOn: &returned,
	}
	require.NoError(t, repo.CreateLoan(context.Background(), loan))

	open, err := repo.FindOpenLoanForBook(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, open.ID)
	assert.True(t, open.IsOpen())
	assert.Equal(t, "03/08/2024", entities.FormatDate(open.ReturnBy))
}

func TestRepository_ListLoans_Ordering(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	createLoan(t, repo, 1, "P1", "01/01/2024", "01/08/2024")
	createLoan(t, repo, 2, "P1", "03/01/2024", "03/08/2024")
	createLoan(t, repo, 3, "P2", "02/01/2024", "02/08/2024")

	all, err := repo.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{2, 3, 1}, []uint{all[0].BookID, all[1].BookID, all[2].BookID})

	history, err := repo.ListLoansForPatron(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, uint(2), history[0].BookID)
}

func TestRepository_OpenAndOverdue(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	now := date("03/10/2024").Add(10 * time.Hour)

	overdue := createLoan(t, repo, 1, "P1", "03/01/2024", "03/08/2024")
	createLoan(t, repo, 2, "P1", "03/05/2024", "03/12/2024")
	dueToday := createLoan(t, repo, 3, "P2", "03/03/2024", "03/10/2024")
	closed := createLoan(t, repo, 4, "P2", "02/01/2024", "02/08/2024")
	require.NoError(t, repo.CloseLoan(ctx, closed.ID, date("02/20/2024")))

	open, err := repo.ListOpenLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	late, err := repo.ListOverdueLoans(ctx, now)
	require.NoError(t, err)
	ids := make([]uint, 0, len(late))
	for _, l := range late {
		ids = append(ids, l.ID)
	}
	// Due today at midnight counts as overdue once the day has started.
	assert.Equal(t, []uint{dueToday.ID, overdue.ID}, ids)

	count, err := repo.CountOverdueLoans(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	late, err = repo.ListOverdueLoans(ctx, date("03/01/2024"))
	require.NoError(t, err)
	assert.Empty(t, late)
}

func TestRepository_CloseLoan(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	loan := createLoan(t, repo, 7, "P1", "03/01/2024", "03/08/2024")
	require.NoError(t, repo.CloseLoan(ctx, loan.ID, date("03/05/2024")))

	_, err := repo.FindOpenLoanForBook(ctx, 7)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	history, err := repo.ListLoansForBook(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].CheckedOut)
	assert.Equal(t, "03/05/2024", entities.FormatDatePtr(history[0].ReturnedOn))

	err = repo.CloseLoan(ctx, 999, date("03/05/2024"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ReassignPatron(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	createLoan(t, repo, 1, "P100", "03/01/2024", "03/08/2024")
	createLoan(t, repo, 2, "P100", "03/02/2024", "03/09/2024")
	createLoan(t, repo, 3, "P200", "03/03/2024", "03/10/2024")

	moved, err := repo.ReassignPatron(ctx, "P100", "P101")
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved)

	old, err := repo.ListLoansForPatron(ctx, "P100")
	require.NoError(t, err)
	assert.Empty(t, old)

	updated, err := repo.ListLoansForPatron(ctx, "P101")
	require.NoError(t, err)
	assert.Len(t, updated, 2)
}
