package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// This file collects the interfaces controllers depend on. Each controller
// takes only the operations it calls; *library.Service satisfies all of
// the library ones.

// BookService covers the book pages and the return form.
type BookService interface {
	ListBooks(ctx context.Context, filter library.Filter) (library.BookList, error)
	GetBookDetail(ctx context.Context, id uint) (library.BookDetail, error)
	CreateBook(ctx context.Context, form library.BookForm) (entities.Book, error)
	UpdateBook(ctx context.Context, id uint, form library.BookForm) (entities.Book, error)
	ReturnView(ctx context.Context, bookID uint) (library.ReturnView, error)
	ReturnBook(ctx context.Context, bookID uint, form library.ReturnForm) (entities.Loan, error)
}

// PatronService covers the patron pages.
type PatronService interface {
	ListPatrons(ctx context.Context) ([]entities.Patron, error)
	GetPatronDetail(ctx context.Context, id uint) (library.PatronDetail, error)
	CreatePatron(ctx context.Context, form library.PatronForm) (entities.Patron, error)
	UpdatePatron(ctx context.Context, id uint, form library.PatronForm) (entities.Patron, error)
}

// LoanService covers the loan pages.
type LoanService interface {
	ListLoans(ctx context.Context, filter library.Filter) (library.LoanList, error)
	NewLoanForm(ctx context.Context) (library.LoanFormView, error)
	CreateLoan(ctx context.Context, form library.LoanForm) (entities.Loan, error)
}

// DashboardReader provides the landing page counts.
type DashboardReader interface {
	Dashboard(ctx context.Context) (library.Dashboard, error)
}

// Library is everything the UI needs from the library service.
type Library interface {
	BookService
	PatronService
	LoanService
	DashboardReader
}

// ActivityReader lists recent activity events.
type ActivityReader interface {
	Recent(ctx context.Context, limit int) ([]entities.ActivityEvent, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
