// Package seed fills a library with sample books, patrons and loans. The
// data goes through library.Service, so it is validated and logged like
// anything a librarian enters.
package seed

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
)

// Writer is the part of library.Service the seeder uses.
type Writer interface {
	CreateBook(ctx context.Context, form library.BookForm) (entities.Book, error)
	CreatePatron(ctx context.Context, form library.PatronForm) (entities.Patron, error)
	CreateLoan(ctx context.Context, form library.LoanForm) (entities.Loan, error)
	ReturnBook(ctx context.Context, bookID uint, form library.ReturnForm) (entities.Loan, error)
}

// Summary counts what Populate created.
type Summary struct {
	Books    int
	Patrons  int
	Loans    int
	Returned int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d books, %d patrons, %d loans (%d returned)", s.Books, s.Patrons, s.Loans, s.Returned)
}

// sampleLoan is a loan relative to the seeding day. Negative offsets are
// in the past; a nil returnedAfter leaves the loan open.
type sampleLoan struct {
	title         string
	libraryID     string
	loanedAgo     int
	dueIn         int
	returnedAfter *int
}

func days(n int) *int { return &n }

func sampleBooks() []library.BookForm {
	return []library.BookForm{
		{Title: "Meditations", Author: "Marcus Aurelius", Genre: "Philosophy", FirstPublished: "180"},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Fiction", FirstPublished: "1813"},
		{Title: "Frankenstein", Author: "Mary Shelley", Genre: "Fiction", FirstPublished: "1818"},
		{Title: "Moby-Dick", Author: "Herman Melville", Genre: "Fiction", FirstPublished: "1851"},
		{Title: "Walden", Author: "Henry David Thoreau", Genre: "Nature", FirstPublished: "1854"},
		{Title: "On the Origin of Species", Author: "Charles Darwin", Genre: "Science", FirstPublished: "1859"},
		{Title: "The Art of War", Author: "Sun Tzu", Genre: "Philosophy"},
		{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", FirstPublished: "1965"},
	}
}

func samplePatrons() []library.PatronForm {
	return []library.PatronForm{
		{FirstName: "Ada", LastName: "Lovelace", Address: "12 St James's Square", Email: "ada@example.com", LibraryID: "P100", ZipID: "10001"},
		{FirstName: "Alan", LastName: "Turing", Address: "2 Adlington Road", Email: "alan@example.com", LibraryID: "P101", ZipID: "10002"},
		{FirstName: "Grace", LastName: "Hopper", Address: "1 Navy Yard", Email: "grace@example.com", LibraryID: "P102", ZipID: "20003"},
		{FirstName: "Katherine", LastName: "Johnson", Address: "4 Langley Way", Email: "katherine@example.com", LibraryID: "P103", ZipID: "23681"},
	}
}

func sampleLoans() []sampleLoan {
	return []sampleLoan{
		// Returned a day early
		{title: "Meditations", libraryID: "P102", loanedAgo: 30, dueIn: 7, returnedAfter: days(6)},
		// Overdue
		{title: "Dune", libraryID: "P100", loanedAgo: 10, dueIn: 7},
		{title: "Frankenstein", libraryID: "P101", loanedAgo: 2, dueIn: 7},
		{title: "Walden", libraryID: "P103", loanedAgo: 1, dueIn: 14},
	}
}

// Populate creates the sample library. Loan dates are relative to now.
func Populate(ctx context.Context, w Writer, now time.Time) (Summary, error) {
	var summary Summary
	today := entities.DateOf(now)

	bookIDs := make(map[string]uint)
	for _, form := range sampleBooks() {
		book, err := w.CreateBook(ctx, form)
		if err != nil {
			return summary, fmt.Errorf("create book %q: %w", form.Title, err)
		}
		bookIDs[book.Title] = book.ID
		summary.Books++
		log.Debugf("Seeded book: %s by %s", book.Title, book.Author)
	}

	for _, form := range samplePatrons() {
		patron, err := w.CreatePatron(ctx, form)
		if err != nil {
			return summary, fmt.Errorf("create patron %s: %w", form.LibraryID, err)
		}
		summary.Patrons++
		log.Debugf("Seeded patron: %s (%s)", patron.FullName(), patron.LibraryID)
	}

	for _, sample := range sampleLoans() {
		bookID := bookIDs[sample.title]
		loanedOn := today.AddDate(0, 0, -sample.loanedAgo)
		_, err := w.CreateLoan(ctx, library.LoanForm{
			BookID:   fmt.Sprint(bookID),
			PatronID: sample.libraryID,
			LoanedOn: entities.FormatDate(loanedOn),
			ReturnBy: entities.FormatDate(loanedOn.AddDate(0, 0, sample.dueIn)),
		})
		if err != nil {
			return summary, fmt.Errorf("lend %q to %s: %w", sample.title, sample.libraryID, err)
		}
		summary.Loans++

		if sample.returnedAfter == nil {
			continue
		}
		returnedOn := loanedOn.AddDate(0, 0, *sample.returnedAfter)
		if _, err := w.ReturnBook(ctx, bookID, library.ReturnForm{ReturnedOn: entities.FormatDate(returnedOn)}); err != nil {
			return summary, fmt.Errorf("return %q: %w", sample.title, err)
		}
		summary.Returned++
	}

	return summary, nil
}
