package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/library"
)

// LoansController serves the loan list and the lending form.
type LoansController struct {
	pages
	loans LoanService
}

func NewLoansController(loans LoanService, p pages) *LoansController {
	return &LoansController{pages: p, loans: loans}
}

// List handles GET /loans?filter=all|checked_out|overdue
func (lc *LoansController) List(c *gin.Context) {
	filter, err := library.ParseFilter(c.Query("filter"))
	if err != nil {
		lc.respondError(c, err, "loans filter")
		return
	}

	list, err := lc.loans.ListLoans(c.Request.Context(), filter)
	if err != nil {
		lc.respondError(c, err, "list loans")
		return
	}
	lc.render(c, "loans", "Loans", "loans", list)
}

// NewForm handles GET /loans/new
func (lc *LoansController) NewForm(c *gin.Context) {
	view, err := lc.loans.NewLoanForm(c.Request.Context())
	if err != nil {
		lc.respondError(c, err, "new loan form")
		return
	}
	lc.render(c, "loan_new", "Lend a book", "loans", view)
}

// Create handles POST /loans/new
func (lc *LoansController) Create(c *gin.Context) {
	var form library.LoanForm
	if !lc.bindForm(c, &form) {
		return
	}

	_, err := lc.loans.CreateLoan(c.Request.Context(), form)
	if verr, ok := asValidation(err); ok {
		view, err := lc.loans.NewLoanForm(c.Request.Context())
		if err != nil {
			lc.respondError(c, err, "new loan form")
			return
		}
		view.Form = form
		lc.renderInvalid(c, "loan_new", "Lend a book", "loans", view, verr)
		return
	}
	if err != nil {
		lc.respondError(c, err, "create loan")
		return
	}

	lc.redirect(c, "/loans?filter=all", "Book lent.")
}
