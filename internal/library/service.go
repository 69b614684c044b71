// Package library implements the library's reads and writes on top of the
// database repositories.
//
// Multi-entity reads run as a pipeline of stages: fetch the parent rows,
// then enrich every row with its related records. Enrichment lookups for
// different rows run concurrently, bounded by a limit, and are reassembled
// in the parent order. Writes that touch both a loan and its book run in
// one transaction.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/loans"
	"github.com/mrlokans/librarian/internal/database/patrons"
	"github.com/mrlokans/librarian/internal/entities"
)

// ActivityRecorder is told about every write the service performs.
type ActivityRecorder interface {
	Record(ctx context.Context, action entities.ActivityAction, entityType string, entityID uint, description string, cause error)
}

// Counters receives loan lifecycle counts for metrics.
type Counters interface {
	LoanCreated()
	BookReturned()
}

type nopActivity struct{}

func (nopActivity) Record(context.Context, entities.ActivityAction, string, uint, string, error) {}

type nopCounters struct{}

func (nopCounters) LoanCreated()  {}
func (nopCounters) BookReturned() {}

// Service is the query and write layer used by the HTTP handlers, the
// overdue scan and the seed command.
type Service struct {
	db      *database.Database
	books   *books.Repository
	patrons *patrons.Repository
	loans   *loans.Repository

	activity    ActivityRecorder
	counters    Counters
	now         func() time.Time
	loanPeriod  int
	fanOutLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Overdue checks and form defaults use it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithActivity records writes in the activity log.
func WithActivity(recorder ActivityRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.activity = recorder
		}
	}
}

// WithCounters reports created loans and returned books.
func WithCounters(counters Counters) Option {
	return func(s *Service) {
		if counters != nil {
			s.counters = counters
		}
	}
}

// WithLoanPeriod sets the default number of days between the loan date
// and the return date offered on the new loan form.
func WithLoanPeriod(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.loanPeriod = days
		}
	}
}

// WithFanOutLimit bounds concurrent enrichment lookups per request.
func WithFanOutLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.fanOutLimit = limit
		}
	}
}

// NewService creates a service over db.
func NewService(db *database.Database, opts ...Option) *Service {
	s := &Service{
		db:          db,
		books:       books.NewRepository(db.DB),
		patrons:     patrons.NewRepository(db.DB),
		loans:       loans.NewRepository(db.DB),
		activity:    nopActivity{},
		counters:    nopCounters{},
		now:         time.Now,
		loanPeriod:  config.DefaultLoanPeriodDays,
		fanOutLimit: defaultFanOutLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return entities.DateOf(s.now())
}

// ListBooks returns the books matching filter. Overdue books are resolved
// through their overdue loans, most recently loaned first.
func (s *Service) ListBooks(ctx context.Context, filter Filter) (BookList, error) {
	list := BookList{Filter: filter, Label: filter.Label()}

	var (
		result []entities.Book
		err    error
	)
	switch filter {
	case FilterAll:
		result, err = s.books.ListBooks(ctx)
	case FilterCheckedOut:
		result, err = s.books.ListCheckedOutBooks(ctx)
	case FilterOverdue:
		result, err = s.overdueBooks(ctx)
	default:
		return list, fmt.Errorf("list books: filter %q: %w", filter, ErrNotFound)
	}
	if err != nil {
		return list, fmt.Errorf("list %s books: %w", filter, err)
	}

	list.Books = result
	return list, nil
}

func (s *Service) overdueBooks(ctx context.Context) ([]entities.Book, error) {
	overdue, err := s.loans.ListOverdueLoans(ctx, s.now())
	if err != nil {
		return nil, err
	}

	found, err := fanOut(ctx, s.fanOutLimit, overdue, func(ctx context.Context, loan entities.Loan) (*entities.Book, error) {
		return s.lookupBook(ctx, loan.BookID)
	})
	if err != nil {
		return nil, err
	}

	result := make([]entities.Book, 0, len(found))
	seen := make(map[uint]bool, len(found))
	for _, book := range found {
		if book == nil || !book.CheckedOut || seen[book.ID] {
			continue
		}
		seen[book.ID] = true
		result = append(result, *book)
	}
	return result, nil
}

// GetBookDetail returns a book and its loan history.
func (s *Service) GetBookDetail(ctx context.Context, id uint) (BookDetail, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return BookDetail{}, notFound(err, "book %d", id)
	}

	history, err := s.loans.ListLoansForBook(ctx, id)
	if err != nil {
		return BookDetail{}, fmt.Errorf("loans of book %d: %w", id, err)
	}

	views, err := fanOut(ctx, s.fanOutLimit, history, func(ctx context.Context, loan entities.Loan) (LoanView, error) {
		return s.loanView(ctx, loan, book, nil)
	})
	if err != nil {
		return BookDetail{}, fmt.Errorf("enrich loans of book %d: %w", id, err)
	}

	detail := BookDetail{Book: *book, Form: BookFormFrom(*book), Loans: views}
	for i := range detail.Loans {
		if detail.Loans[i].Loan.IsOpen() {
			detail.OpenLoan = &detail.Loans[i]
		}
	}
	return detail, nil
}

// ListLoans returns the loans matching filter, most recently loaned first.
func (s *Service) ListLoans(ctx context.Context, filter Filter) (LoanList, error) {
	list := LoanList{Filter: filter, Label: filter.Label()}

	var (
		result []entities.Loan
		err    error
	)
	switch filter {
	case FilterAll:
		result, err = s.loans.ListLoans(ctx)
	case FilterCheckedOut:
		result, err = s.loans.ListOpenLoans(ctx)
	case FilterOverdue:
		result, err = s.loans.ListOverdueLoans(ctx, s.now())
	default:
		return list, fmt.Errorf("list loans: filter %q: %w", filter, ErrNotFound)
	}
	if err != nil {
		return list, fmt.Errorf("list %s loans: %w", filter, err)
	}

	list.Loans, err = s.enrichLoans(ctx, result)
	if err != nil {
		return list, fmt.Errorf("enrich %s loans: %w", filter, err)
	}
	return list, nil
}

// OverdueLoans returns every open loan past its return date.
func (s *Service) OverdueLoans(ctx context.Context) ([]LoanView, error) {
	list, err := s.ListLoans(ctx, FilterOverdue)
	if err != nil {
		return nil, err
	}
	return list.Loans, nil
}

// ListPatrons returns every patron ordered by last name.
func (s *Service) ListPatrons(ctx context.Context) ([]entities.Patron, error) {
	result, err := s.patrons.ListPatrons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patrons: %w", err)
	}
	return result, nil
}

// GetPatronDetail returns a patron and their loans.
func (s *Service) GetPatronDetail(ctx context.Context, id uint) (PatronDetail, error) {
	patron, err := s.patrons.GetPatronByID(ctx, id)
	if err != nil {
		return PatronDetail{}, notFound(err, "patron %d", id)
	}

	history, err := s.loans.ListLoansForPatron(ctx, patron.LibraryID)
	if err != nil {
		return PatronDetail{}, fmt.Errorf("loans of patron %s: %w", patron.LibraryID, err)
	}

	views, err := fanOut(ctx, s.fanOutLimit, history, func(ctx context.Context, loan entities.Loan) (LoanView, error) {
		return s.loanView(ctx, loan, nil, patron)
	})
	if err != nil {
		return PatronDetail{}, fmt.Errorf("enrich loans of patron %s: %w", patron.LibraryID, err)
	}

	return PatronDetail{Patron: *patron, Form: PatronFormFrom(*patron), Loans: views}, nil
}

// Dashboard counts books, loans and patrons for the landing page.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.Books, d.CheckedOut, err = s.books.CountBooks(ctx); err != nil {
		return d, fmt.Errorf("count books: %w", err)
	}
	if d.Overdue, err = s.loans.CountOverdueLoans(ctx, s.now()); err != nil {
		return d, fmt.Errorf("count overdue loans: %w", err)
	}
	if d.Patrons, err = s.patrons.CountPatrons(ctx); err != nil {
		return d, fmt.Errorf("count patrons: %w", err)
	}
	return d, nil
}

// CreateBook validates and stores a new book.
func (s *Service) CreateBook(ctx context.Context, form BookForm) (entities.Book, error) {
	book := form.book()
	if err := entities.Validate(book); err != nil {
		return book, err
	}
	if err := s.books.CreateBook(ctx, &book); err != nil {
		return book, fmt.Errorf("create book: %w", err)
	}

	s.activity.Record(ctx, entities.ActivityBookCreated, "book", book.ID,
		fmt.Sprintf("Added %q by %s", book.Title, book.Author), nil)
	return book, nil
}

// UpdateBook validates and stores the editable fields of a book.
func (s *Service) UpdateBook(ctx context.Context, id uint, form BookForm) (entities.Book, error) {
	details := form.book()
	details.ID = id
	if err := entities.Validate(details); err != nil {
		return details, err
	}
	if err := s.books.UpdateBookDetails(ctx, id, details); err != nil {
		return details, notFound(err, "update book %d", id)
	}

	s.activity.Record(ctx, entities.ActivityBookUpdated, "book", id,
		fmt.Sprintf("Updated %q", details.Title), nil)
	return details, nil
}

// CreatePatron validates and stores a new patron. The library id must
// not belong to another patron.
func (s *Service) CreatePatron(ctx context.Context, form PatronForm) (entities.Patron, error) {
	patron := form.patron()
	if err := s.validatePatron(ctx, patron, 0); err != nil {
		return patron, err
	}
	if err := s.patrons.CreatePatron(ctx, &patron); err != nil {
		return patron, fmt.Errorf("create patron: %w", err)
	}

	s.activity.Record(ctx, entities.ActivityPatronCreated, "patron", patron.ID,
		fmt.Sprintf("Registered %s (%s)", patron.FullName(), patron.LibraryID), nil)
	return patron, nil
}

// UpdatePatron validates and stores a patron's details. When the library
// id changes, the patron's loans are moved to the new id in the same
// transaction.
func (s *Service) UpdatePatron(ctx context.Context, id uint, form PatronForm) (entities.Patron, error) {
	details := form.patron()
	details.ID = id

	existing, err := s.patrons.GetPatronByID(ctx, id)
	if err != nil {
		return details, notFound(err, "patron %d", id)
	}
	if err := s.validatePatron(ctx, details, id); err != nil {
		return details, err
	}

	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.patrons.WithTx(tx).UpdatePatronDetails(ctx, id, details); err != nil {
			return notFound(err, "update patron %d", id)
		}
		if existing.LibraryID == details.LibraryID {
			return nil
		}
		moved, err := s.loans.WithTx(tx).ReassignPatron(ctx, existing.LibraryID, details.LibraryID)
		if err != nil {
			return fmt.Errorf("move loans to %s: %w", details.LibraryID, err)
		}
		log.Printf("Moved %d loans from library id %s to %s", moved, existing.LibraryID, details.LibraryID)
		return nil
	})
	if err != nil {
		return details, err
	}

	s.activity.Record(ctx, entities.ActivityPatronUpdated, "patron", id,
		fmt.Sprintf("Updated %s (%s)", details.FullName(), details.LibraryID), nil)
	return details, nil
}

func (s *Service) validatePatron(ctx context.Context, patron entities.Patron, excludeID uint) error {
	verr := &entities.ValidationError{}
	if err := entities.Collect(verr, patron); err != nil {
		return err
	}
	if patron.LibraryID != "" {
		taken, err := s.patrons.LibraryIDTaken(ctx, patron.LibraryID, excludeID)
		if err != nil {
			return fmt.Errorf("check library id %s: %w", patron.LibraryID, err)
		}
		if taken {
			verr.Add("library_id", msgLibraryIDTaken)
		}
	}
	return verr.OrNil()
}

// NewLoanForm returns the options and defaults for the new loan form:
// books on the shelf, all patrons, today and today plus the loan period.
func (s *Service) NewLoanForm(ctx context.Context) (LoanFormView, error) {
	available, err := s.books.ListAvailableBooks(ctx)
	if err != nil {
		return LoanFormView{}, fmt.Errorf("list available books: %w", err)
	}
	everyone, err := s.patrons.ListPatrons(ctx)
	if err != nil {
		return LoanFormView{}, fmt.Errorf("list patrons: %w", err)
	}

	today := s.today()
	return LoanFormView{
		Books:   available,
		Patrons: everyone,
		Form: LoanForm{
			LoanedOn: entities.FormatDate(today),
			ReturnBy: entities.FormatDate(today.AddDate(0, 0, s.loanPeriod)),
		},
	}, nil
}

// CreateLoan lends a book to a patron. The book must exist and be on the
// shelf, and the patron is referenced by library id. The loan is stored
// and the book marked checked out in one transaction.
func (s *Service) CreateLoan(ctx context.Context, form LoanForm) (entities.Loan, error) {
	loan := form.loan()

	verr := &entities.ValidationError{}
	if err := entities.Collect(verr, loan); err != nil {
		return loan, err
	}

	var book *entities.Book
	if loan.BookID != 0 {
		found, err := s.lookupBook(ctx, loan.BookID)
		if err != nil {
			return loan, fmt.Errorf("check book %d: %w", loan.BookID, err)
		}
		if found == nil {
			verr.Add("book_id", msgSelectBook)
		}
		book = found
	}
	if loan.PatronID != "" {
		found, err := s.lookupPatron(ctx, loan.PatronID)
		if err != nil {
			return loan, fmt.Errorf("check patron %s: %w", loan.PatronID, err)
		}
		if found == nil {
			verr.Add("patron_id", msgSelectPatron)
		}
	}
	if err := verr.OrNil(); err != nil {
		return loan, err
	}

	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		// Re-read inside the transaction so two librarians cannot lend the
		// same copy.
		current, err := s.books.WithTx(tx).GetBookByID(ctx, loan.BookID)
		if err != nil {
			return notFound(err, "book %d", loan.BookID)
		}
		if current.CheckedOut {
			return &RuleError{Message: msgAlreadyCheckedOut}
		}
		if err := s.loans.WithTx(tx).CreateLoan(ctx, &loan); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		if err := s.books.WithTx(tx).SetCheckedOut(ctx, loan.BookID, true); err != nil {
			return fmt.Errorf("check out book %d: %w", loan.BookID, err)
		}
		return nil
	})

	description := fmt.Sprintf("Lent %q to %s, due %s", book.Title, loan.PatronID, entities.FormatDate(loan.ReturnBy))
	if err != nil {
		var rule *RuleError
		if errors.As(err, &rule) {
			s.activity.Record(ctx, entities.ActivityLoanCreated, "book", loan.BookID, description, err)
		}
		return loan, err
	}

	s.counters.LoanCreated()
	s.activity.Record(ctx, entities.ActivityLoanCreated, "loan", loan.ID, description, nil)
	return loan, nil
}

// ReturnView backs the return form. The book must be checked out.
func (s *Service) ReturnView(ctx context.Context, bookID uint) (ReturnView, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return ReturnView{}, notFound(err, "book %d", bookID)
	}
	if !book.CheckedOut {
		return ReturnView{}, &RuleError{Message: msgNotCheckedOut}
	}

	open, err := s.loans.FindOpenLoanForBook(ctx, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReturnView{}, &RuleError{Message: msgNoOpenLoan}
	}
	if err != nil {
		return ReturnView{}, fmt.Errorf("open loan of book %d: %w", bookID, err)
	}

	view, err := s.loanView(ctx, *open, book, nil)
	if err != nil {
		return ReturnView{}, fmt.Errorf("enrich loan %d: %w", open.ID, err)
	}

	return ReturnView{
		Book:       *book,
		Loan:       view,
		Patron:     view.Patron,
		ReturnedOn: entities.FormatDate(s.today()),
	}, nil
}

// ReturnBook closes the open loan of a book and puts the book back on the
// shelf in one transaction. Returning a book that is not checked out, or
// that has no open loan, is a RuleError and changes nothing.
func (s *Service) ReturnBook(ctx context.Context, bookID uint, form ReturnForm) (entities.Loan, error) {
	returnedOn := s.today()
	if raw := form.ReturnedOn; raw != "" {
		parsed, ok := entities.ParseDate(raw)
		if !ok {
			verr := &entities.ValidationError{}
			verr.Add("returned_on", msgReturnedOn)
			return entities.Loan{}, verr
		}
		returnedOn = parsed
	}

	var closed entities.Loan
	var title string
	err := s.db.Transaction(ctx, func(tx *gorm.DB) error {
		book, err := s.books.WithTx(tx).GetBookByID(ctx, bookID)
		if err != nil {
			return notFound(err, "book %d", bookID)
		}
		title = book.Title
		if !book.CheckedOut {
			return &RuleError{Message: msgNotCheckedOut}
		}

		open, err := s.loans.WithTx(tx).FindOpenLoanForBook(ctx, bookID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RuleError{Message: msgNoOpenLoan}
		}
		if err != nil {
			return fmt.Errorf("open loan of book %d: %w", bookID, err)
		}

		if err := s.loans.WithTx(tx).CloseLoan(ctx, open.ID, returnedOn); err != nil {
			return fmt.Errorf("close loan %d: %w", open.ID, err)
		}
		if err := s.books.WithTx(tx).SetCheckedOut(ctx, bookID, false); err != nil {
			return fmt.Errorf("check in book %d: %w", bookID, err)
		}

		closed = *open
		closed.CheckedOut = false
		closed.ReturnedOn = &returnedOn
		return nil
	})
	if err != nil {
		var rule *RuleError
		if errors.As(err, &rule) {
			s.activity.Record(ctx, entities.ActivityBookReturned, "book", bookID,
				fmt.Sprintf("Return of %q refused", title), err)
		}
		return entities.Loan{}, err
	}

	s.counters.BookReturned()
	s.activity.Record(ctx, entities.ActivityBookReturned, "loan", closed.ID,
		fmt.Sprintf("%q returned by %s on %s", title, closed.PatronID, entities.FormatDate(returnedOn)), nil)
	return closed, nil
}

// enrichLoans joins every loan to its book and patron.
func (s *Service) enrichLoans(ctx context.Context, result []entities.Loan) ([]LoanView, error) {
	return fanOut(ctx, s.fanOutLimit, result, func(ctx context.Context, loan entities.Loan) (LoanView, error) {
		return s.loanView(ctx, loan, nil, nil)
	})
}

// loanView builds the display value of a loan. A known book or patron is
// used as is, the other is looked up.
func (s *Service) loanView(ctx context.Context, loan entities.Loan, book *entities.Book, patron *entities.Patron) (LoanView, error) {
	var err error
	if book == nil {
		if book, err = s.lookupBook(ctx, loan.BookID); err != nil {
			return LoanView{}, fmt.Errorf("book of loan %d: %w", loan.ID, err)
		}
	}
	if patron == nil {
		if patron, err = s.lookupPatron(ctx, loan.PatronID); err != nil {
			return LoanView{}, fmt.Errorf("patron of loan %d: %w", loan.ID, err)
		}
	}

	return LoanView{
		Loan:       loan,
		Book:       book,
		Patron:     patron,
		LoanedOn:   entities.FormatDate(loan.LoanedOn),
		ReturnBy:   entities.FormatDate(loan.ReturnBy),
		ReturnedOn: entities.FormatDatePtr(loan.ReturnedOn),
		Overdue:    loan.IsOverdue(s.now()),
	}, nil
}

// lookupBook returns nil without error when the book does not exist.
func (s *Service) lookupBook(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := s.books.GetBookByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return book, err
}

// lookupPatron returns nil without error when no patron holds libraryID.
func (s *Service) lookupPatron(ctx context.Context, libraryID string) (*entities.Patron, error) {
	patron, err := s.patrons.GetPatronByLibraryID(ctx, libraryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return patron, err
}
