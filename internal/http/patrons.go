package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/library"
)

// PatronsController serves the patron pages.
type PatronsController struct {
	pages
	patrons PatronService
}

func NewPatronsController(patrons PatronService, p pages) *PatronsController {
	return &PatronsController{pages: p, patrons: patrons}
}

// List handles GET /patrons
func (pc *PatronsController) List(c *gin.Context) {
	everyone, err := pc.patrons.ListPatrons(c.Request.Context())
	if err != nil {
		pc.respondError(c, err, "list patrons")
		return
	}
	pc.render(c, "patrons", "Patrons", "patrons", everyone)
}

// Details handles GET /patrons/details/:id
func (pc *PatronsController) Details(c *gin.Context) {
	id, ok := pc.parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := pc.patrons.GetPatronDetail(c.Request.Context(), id)
	if err != nil {
		pc.respondError(c, err, "patron detail")
		return
	}
	pc.render(c, "patron_detail", detail.Patron.FullName(), "patrons", detail)
}

// Update handles POST /patrons/details/:id
func (pc *PatronsController) Update(c *gin.Context) {
	id, ok := pc.parseIDParam(c, "id")
	if !ok {
		return
	}
	var form library.PatronForm
	if !pc.bindForm(c, &form) {
		return
	}

	patron, err := pc.patrons.UpdatePatron(c.Request.Context(), id, form)
	if verr, ok := asValidation(err); ok {
		detail, err := pc.patrons.GetPatronDetail(c.Request.Context(), id)
		if err != nil {
			pc.respondError(c, err, "patron detail")
			return
		}
		detail.Form = form
		pc.renderInvalid(c, "patron_detail", detail.Patron.FullName(), "patrons", detail, verr)
		return
	}
	if err != nil {
		pc.respondError(c, err, "update patron")
		return
	}

	pc.redirect(c, "/patrons", fmt.Sprintf("Saved %s.", patron.FullName()))
}

// NewForm handles GET /patrons/new
func (pc *PatronsController) NewForm(c *gin.Context) {
	pc.render(c, "patron_new", "Register a patron", "patrons", library.PatronForm{})
}

// Create handles POST /patrons/new
func (pc *PatronsController) Create(c *gin.Context) {
	var form library.PatronForm
	if !pc.bindForm(c, &form) {
		return
	}

	patron, err := pc.patrons.CreatePatron(c.Request.Context(), form)
	if verr, ok := asValidation(err); ok {
		pc.renderInvalid(c, "patron_new", "Register a patron", "patrons", form, verr)
		return
	}
	if err != nil {
		pc.respondError(c, err, "create patron")
		return
	}

	pc.redirect(c, fmt.Sprintf("/patrons/details/%d", patron.ID),
		fmt.Sprintf("Registered %s with library id %s.", patron.FullName(), patron.LibraryID))
}
