package library

import (
	"strconv"
	"strings"

	"github.com/mrlokans/librarian/internal/entities"
)

// BookForm is the raw input of the new and edit book forms.
type BookForm struct {
	Title          string `form:"title"`
	Author         string `form:"author"`
	Genre          string `form:"genre"`
	FirstPublished string `form:"first_published"`
}

// BookFormFrom prefills an edit form.
func BookFormFrom(b entities.Book) BookForm {
	return BookForm{
		Title:          b.Title,
		Author:         b.Author,
		Genre:          b.Genre,
		FirstPublished: b.FirstPublished,
	}
}

func (f BookForm) trimmed() BookForm {
	return BookForm{
		Title:          strings.TrimSpace(f.Title),
		Author:         strings.TrimSpace(f.Author),
		Genre:          strings.TrimSpace(f.Genre),
		FirstPublished: strings.TrimSpace(f.FirstPublished),
	}
}

func (f BookForm) book() entities.Book {
	f = f.trimmed()
	return entities.Book{
		Title:          f.Title,
		Author:         f.Author,
		Genre:          f.Genre,
		FirstPublished: f.FirstPublished,
	}
}

// PatronForm is the raw input of the new and edit patron forms.
type PatronForm struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Address   string `form:"address"`
	Email     string `form:"email"`
	LibraryID string `form:"library_id"`
	ZipID     string `form:"zip_id"`
}

// PatronFormFrom prefills an edit form.
func PatronFormFrom(p entities.Patron) PatronForm {
	zip := ""
	if p.ZipID != 0 {
		zip = strconv.Itoa(p.ZipID)
	}
	return PatronForm{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Address:   p.Address,
		Email:     p.Email,
		LibraryID: p.LibraryID,
		ZipID:     zip,
	}
}

// patron converts the form. A zip code that is not a number is left at
// zero so validation reports it as missing.
func (f PatronForm) patron() entities.Patron {
	zip, _ := strconv.Atoi(strings.TrimSpace(f.ZipID))
	return entities.Patron{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Address:   strings.TrimSpace(f.Address),
		Email:     strings.TrimSpace(f.Email),
		LibraryID: strings.TrimSpace(f.LibraryID),
		ZipID:     zip,
	}
}

// LoanForm is the raw input of the new loan form. Dates are mm/dd/yyyy
// or yyyy-mm-dd.
type LoanForm struct {
	BookID   string `form:"book_id"`
	PatronID string `form:"patron_id"`
	LoanedOn string `form:"loaned_on"`
	ReturnBy string `form:"return_by"`
}

// loan converts the form. Unparseable ids and dates become zero values,
// which validation then rejects with the field's message.
func (f LoanForm) loan() entities.Loan {
	bookID, _ := strconv.ParseUint(strings.TrimSpace(f.BookID), 10, 64)
	loanedOn, _ := entities.ParseDate(strings.TrimSpace(f.LoanedOn))
	returnBy, _ := entities.ParseDate(strings.TrimSpace(f.ReturnBy))
	return entities.Loan{
		BookID:   uint(bookID),
		PatronID: strings.TrimSpace(f.PatronID),
		LoanedOn: loanedOn,
		ReturnBy: returnBy,
	}
}

// ReturnForm is the input of the return form. An empty ReturnedOn means today.
type ReturnForm struct {
	ReturnedOn string `form:"returned_on"`
}
