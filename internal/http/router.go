package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/metrics"
	"github.com/mrlokans/librarian/internal/middleware"
	"github.com/mrlokans/librarian/web"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.Metrics {
		router.Use(metrics.Middleware())
	}

	// Apply security headers to all responses
	router.Use(middleware.SecurityHeaders())

	// Sessions wrap every route so the 404 page can show a pending flash
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.LoadSave())
	}

	tmpl, err := web.Templates(cfg.TemplatesPath, templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.StaticFS("/static", web.Static(cfg.StaticPath))

	p := pages{sessions: cfg.Sessions}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if cfg.Metrics {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.ActivityRetentionDays)
		api := router.Group("/api/tasks")
		api.GET("/types", tasksController.ListTaskTypes)
		api.GET("/:id", tasksController.GetTaskStatus)
		api.POST("/:type/run", tasksController.RunTask)
	}

	// HTML pages; forms carry a CSRF token when a key is configured
	ui := router.Group("/")
	if len(cfg.CSRFKey) > 0 {
		ui.Use(middleware.CSRF(cfg.CSRFKey, cfg.SecureCookies))
	}

	home := NewHomeController(cfg.Library, p)
	ui.GET("/", home.Index)

	books := NewBooksController(cfg.Library, p)
	ui.GET("/books", books.List)
	ui.GET("/books/new", books.NewForm)
	ui.POST("/books/new", books.Create)
	ui.GET("/books/details/:id", books.Details)
	ui.POST("/books/details/:id", books.Update)
	ui.GET("/books/return/:id", books.ReturnForm)
	ui.POST("/books/return/:id", books.Return)

	patrons := NewPatronsController(cfg.Library, p)
	ui.GET("/patrons", patrons.List)
	ui.GET("/patrons/new", patrons.NewForm)
	ui.POST("/patrons/new", patrons.Create)
	ui.GET("/patrons/details/:id", patrons.Details)
	ui.POST("/patrons/details/:id", patrons.Update)

	loans := NewLoansController(cfg.Library, p)
	ui.GET("/loans", loans.List)
	ui.GET("/loans/new", loans.NewForm)
	ui.POST("/loans/new", loans.Create)

	if cfg.Activity != nil {
		activity := NewActivityController(cfg.Activity, p)
		ui.GET("/activity", activity.Recent)
	}

	router.NoRoute(func(c *gin.Context) {
		p.renderError(c, http.StatusNotFound, "Sorry, we couldn't find that page.")
	})

	return router, nil
}
