package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/library"
)

// BooksController serves the book pages and the return form.
type BooksController struct {
	pages
	books BookService
}

func NewBooksController(books BookService, p pages) *BooksController {
	return &BooksController{pages: p, books: books}
}

// List handles GET /books?filter=all|checked_out|overdue
func (bc *BooksController) List(c *gin.Context) {
	filter, err := library.ParseFilter(c.Query("filter"))
	if err != nil {
		bc.respondError(c, err, "books filter")
		return
	}

	list, err := bc.books.ListBooks(c.Request.Context(), filter)
	if err != nil {
		bc.respondError(c, err, "list books")
		return
	}
	bc.render(c, "books", "Books", "books", list)
}

// Details handles GET /books/details/:id
func (bc *BooksController) Details(c *gin.Context) {
	id, ok := bc.parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := bc.books.GetBookDetail(c.Request.Context(), id)
	if err != nil {
		bc.respondError(c, err, "book detail")
		return
	}
	bc.render(c, "book_detail", detail.Book.Title, "books", detail)
}

// Update handles POST /books/details/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := bc.parseIDParam(c, "id")
	if !ok {
		return
	}
	var form library.BookForm
	if !bc.bindForm(c, &form) {
		return
	}

	book, err := bc.books.UpdateBook(c.Request.Context(), id, form)
	if verr, ok := asValidation(err); ok {
		detail, err := bc.books.GetBookDetail(c.Request.Context(), id)
		if err != nil {
			bc.respondError(c, err, "book detail")
			return
		}
		detail.Form = form
		bc.renderInvalid(c, "book_detail", detail.Book.Title, "books", detail, verr)
		return
	}
	if err != nil {
		bc.respondError(c, err, "update book")
		return
	}

	bc.redirect(c, "/books?filter=all", fmt.Sprintf("Saved %q.", book.Title))
}

// NewForm handles GET /books/new
func (bc *BooksController) NewForm(c *gin.Context) {
	bc.render(c, "book_new", "Add a book", "books", library.BookForm{})
}

// Create handles POST /books/new
func (bc *BooksController) Create(c *gin.Context) {
	var form library.BookForm
	if !bc.bindForm(c, &form) {
		return
	}

	book, err := bc.books.CreateBook(c.Request.Context(), form)
	if verr, ok := asValidation(err); ok {
		bc.renderInvalid(c, "book_new", "Add a book", "books", form, verr)
		return
	}
	if err != nil {
		bc.respondError(c, err, "create book")
		return
	}

	bc.redirect(c, fmt.Sprintf("/books/details/%d", book.ID), fmt.Sprintf("Added %q.", book.Title))
}

// ReturnForm handles GET /books/return/:id
func (bc *BooksController) ReturnForm(c *gin.Context) {
	id, ok := bc.parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := bc.books.ReturnView(c.Request.Context(), id)
	if err != nil {
		bc.respondError(c, err, "return form")
		return
	}
	bc.render(c, "book_return", "Return "+view.Book.Title, "books", view)
}

// Return handles POST /books/return/:id
func (bc *BooksController) Return(c *gin.Context) {
	id, ok := bc.parseIDParam(c, "id")
	if !ok {
		return
	}
	var form library.ReturnForm
	if !bc.bindForm(c, &form) {
		return
	}

	_, err := bc.books.ReturnBook(c.Request.Context(), id, form)
	if verr, ok := asValidation(err); ok {
		view, err := bc.books.ReturnView(c.Request.Context(), id)
		if err != nil {
			bc.respondError(c, err, "return form")
			return
		}
		view.ReturnedOn = form.ReturnedOn
		bc.renderInvalid(c, "book_return", "Return "+view.Book.Title, "books", view, verr)
		return
	}
	if err != nil {
		bc.respondError(c, err, "return book")
		return
	}

	bc.redirect(c, "/books?filter=all", "Book returned.")
}
