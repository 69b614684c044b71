package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/middleware"
)

// Page is the value every HTML template is executed with. Page holds the
// view of the current request; the rest is shared by the layout.
type Page struct {
	Title     string
	Nav       string
	Flash     *middleware.Flash
	CSRFField template.HTML
	Errors    *entities.ValidationError
	Page      any
}

// pages renders templates and redirects with flash messages. Controllers
// embed it.
type pages struct {
	sessions *middleware.SessionManager
}

func (p pages) page(c *gin.Context, title, nav string, view any) Page {
	return Page{
		Title:     title,
		Nav:       nav,
		Flash:     middleware.PopFlash(p.sessions, c),
		CSRFField: middleware.CSRFField(c),
		Page:      view,
	}
}

func (p pages) render(c *gin.Context, name, title, nav string, view any) {
	c.HTML(http.StatusOK, name, p.page(c, title, nav, view))
}

// renderInvalid re-renders a form with the submitted values and the
// messages of every rejected field.
func (p pages) renderInvalid(c *gin.Context, name, title, nav string, view any, verr *entities.ValidationError) {
	page := p.page(c, title, nav, view)
	page.Errors = verr
	c.HTML(http.StatusUnprocessableEntity, name, page)
}

func (p pages) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error", p.page(c, http.StatusText(status), "", message))
}

// redirect answers a successful form post with 303 See Other so a reload
// does not resubmit the form.
func (p pages) redirect(c *gin.Context, location, message string) {
	if message != "" {
		middleware.SetFlash(p.sessions, c, middleware.FlashSuccess, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// respondError renders the error page for a failed operation. Rule
// violations are shown as is, missing records as 404, and anything else
// is logged and hidden behind a generic message.
func (p pages) respondError(c *gin.Context, err error, context string) {
	var rule *library.RuleError
	switch {
	case errors.As(err, &rule):
		p.renderError(c, http.StatusBadRequest, rule.Message)
	case errors.Is(err, library.ErrNotFound):
		p.renderError(c, http.StatusNotFound, "Sorry, we couldn't find that page.")
	default:
		log.WithField("path", c.Request.URL.Path).Errorf("Internal error (%s): %v", context, err)
		p.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// parseIDParam extracts an unsigned integer ID from URL parameters. An ID
// that is not a number cannot name a record, so it renders the 404 page.
func (p pages) parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		p.renderError(c, http.StatusNotFound, "Sorry, we couldn't find that page.")
		return 0, false
	}
	return uint(id), true
}

// bindForm binds a urlencoded or multipart form body.
func (p pages) bindForm(c *gin.Context, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		log.Warnf("Failed to bind form on %s: %v", c.Request.URL.Path, err)
		p.renderError(c, http.StatusBadRequest, "The form could not be read.")
		return false
	}
	return true
}

func asValidation(err error) (*entities.ValidationError, bool) {
	var verr *entities.ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// --- Template functions ---

type filterMenu struct {
	Base    string
	Current library.Filter
	Filters []library.Filter
}

type formFields struct {
	Form   any
	Errors *entities.ValidationError
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"fieldError": func(verr *entities.ValidationError, field string) string {
			if verr == nil {
				return ""
			}
			return verr.Field(field)
		},
		"formatTime": func(t time.Time) string {
			return t.Local().Format(entities.DateLayout + " 15:04")
		},
		"filterMenu": func(base string, current library.Filter) filterMenu {
			return filterMenu{Base: base, Current: current, Filters: library.Filters()}
		},
		"formFields": func(form any, verr *entities.ValidationError) formFields {
			return formFields{Form: form, Errors: verr}
		},
	}
}
