package library

import "github.com/mrlokans/librarian/internal/entities"

// BookList is the books page for one filter.
type BookList struct {
	Filter Filter
	Label  string
	Books  []entities.Book
}

// LoanView is a loan joined to its book and patron, with dates formatted
// for display. Book or Patron is nil when the referenced row is missing.
type LoanView struct {
	Loan       entities.Loan
	Book       *entities.Book
	Patron     *entities.Patron
	LoanedOn   string
	ReturnBy   string
	ReturnedOn string
	Overdue    bool
}

// LoanList is the loans page for one filter.
type LoanList struct {
	Filter Filter
	Label  string
	Loans  []LoanView
}

// BookDetail is a book with its full loan history, oldest first.
type BookDetail struct {
	Book     entities.Book
	Form     BookForm
	Loans    []LoanView
	OpenLoan *LoanView
}

// PatronDetail is a patron with their loans, newest first.
type PatronDetail struct {
	Patron entities.Patron
	Form   PatronForm
	Loans  []LoanView
}

// ReturnView backs the return form of a checked out book.
type ReturnView struct {
	Book       entities.Book
	Loan       LoanView
	Patron     *entities.Patron
	ReturnedOn string
}

// LoanFormView backs the new loan form: the books that can be lent, every
// patron, and the values to show in the form.
type LoanFormView struct {
	Books   []entities.Book
	Patrons []entities.Patron
	Form    LoanForm
}

// Dashboard holds the counts shown on the landing page.
type Dashboard struct {
	Books      int64
	CheckedOut int64
	Overdue    int64
	Patrons    int64
}
