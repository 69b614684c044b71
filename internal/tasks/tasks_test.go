package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

type fakeLister struct {
	loans []library.LoanView
	err   error
}

func (f fakeLister) OverdueLoans(context.Context) ([]library.LoanView, error) {
	return f.loans, f.err
}

type fakeRecorder struct {
	seen         map[uint]bool
	descriptions []string
}

func (f *fakeRecorder) RecordOverdue(_ context.Context, loanID uint, description string) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[uint]bool)
	}
	if f.seen[loanID] {
		return false, nil
	}
	f.seen[loanID] = true
	f.descriptions = append(f.descriptions, description)
	return true, nil
}

func overdueView(id uint, title string) library.LoanView {
	return library.LoanView{
		Loan:     entities.Loan{ID: id, BookID: id, PatronID: "P100"},
		Book:     &entities.Book{ID: id, Title: title},
		Patron:   &entities.Patron{FirstName: "Ada", LastName: "Lovelace", LibraryID: "P100"},
		ReturnBy: "03/08/2024",
	}
}

func TestScanOverdueLoans_FlagsEachLoanOnce(t *testing.T) {
	lister := fakeLister{loans: []library.LoanView{overdueView(1, "Dune"), overdueView(2, "Emma")}}
	recorder := &fakeRecorder{}

	flagged, err := ScanOverdueLoans(context.Background(), lister, recorder)
	require.NoError(t, err)
	assert.Equal(t, 2, flagged)
	assert.Equal(t, `"Dune" lent to Ada Lovelace (P100) was due 03/08/2024`, recorder.descriptions[0])

	flagged, err = ScanOverdueLoans(context.Background(), lister, recorder)
	require.NoError(t, err)
	assert.Zero(t, flagged)
}

func TestScanOverdueLoans_ListError(t *testing.T) {
	boom := errors.New("db down")
	_, err := ScanOverdueLoans(context.Background(), fakeLister{err: boom}, &fakeRecorder{})
	assert.ErrorIs(t, err, boom)
}

func TestOverdueDescription_MissingReferences(t *testing.T) {
	view := library.LoanView{Loan: entities.Loan{BookID: 7, PatronID: "P404"}, ReturnBy: "01/02/2024"}
	assert.Equal(t, "book #7 lent to P404 was due 01/02/2024", overdueDescription(view))
}

func TestScanOverdueLoansProcessor(t *testing.T) {
	process := ScanOverdueLoansProcessor(fakeLister{loans: []library.LoanView{overdueView(1, "Dune")}}, &fakeRecorder{})
	assert.NoError(t, process(context.Background(), ScanOverdueLoansTask{}))

	process = ScanOverdueLoansProcessor(nil, nil)
	assert.Error(t, process(context.Background(), ScanOverdueLoansTask{}))
}

type fakeCleaner struct {
	retention time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 4, nil
}

func TestCleanupActivityProcessor(t *testing.T) {
	cleaner := &fakeCleaner{}
	process := CleanupActivityProcessor(cleaner)

	require.NoError(t, process(context.Background(), CleanupActivityTask{RetentionDays: 30}))
	assert.Equal(t, 30*24*time.Hour, cleaner.retention)

	require.NoError(t, process(context.Background(), CleanupActivityTask{}))
	assert.Equal(t, 365*24*time.Hour, cleaner.retention)

	assert.Error(t, CleanupActivityProcessor(nil)(context.Background(), CleanupActivityTask{}))
}

func TestTaskConfigs(t *testing.T) {
	scan := ScanOverdueLoansTask{}.Config()
	assert.Equal(t, "scan_overdue_loans", scan.Name)
	assert.Equal(t, 3, scan.MaxAttempts)
	assert.NotNil(t, scan.Retention)

	cleanup := CleanupActivityTask{}.Config()
	assert.Equal(t, "cleanup_activity_events", cleanup.Name)
	assert.Equal(t, 2*time.Minute, cleanup.Timeout)
}
