package http

import (
	"github.com/gin-gonic/gin"
)

// HomeController serves the landing page.
type HomeController struct {
	pages
	dashboard DashboardReader
}

func NewHomeController(dashboard DashboardReader, p pages) *HomeController {
	return &HomeController{pages: p, dashboard: dashboard}
}

// Index handles GET /
func (h *HomeController) Index(c *gin.Context) {
	counts, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "dashboard")
		return
	}
	h.render(c, "index", "", "", counts)
}
