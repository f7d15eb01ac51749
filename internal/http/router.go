// Package http wires the JSON API. Route groups mirror the role model:
// the catalog reads are open to any signed-in user, catalog writes and
// account administration require the admin role.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/librarium/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidations()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Health and metrics endpoints stay outside the auth groups
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", MetricsHandler())

	// Session endpoints
	if cfg.AuthService != nil && cfg.SessionManager != nil {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		if cfg.AuditService != nil {
			authController.SetAuditor(cfg.AuditService)
		}
		router.POST("/api/auth/login", authController.Login)
		router.POST("/api/auth/signup", authController.Signup)
		router.POST("/api/auth/logout", authController.Logout)
		router.GET("/api/auth/me", auth.RequireAuth(), authController.Me)
	}

	booksController := NewBooksController(cfg.Catalog)
	if cfg.AuditService != nil {
		booksController.SetAuditService(cfg.AuditService)
	}
	if cfg.CoverProcessor != nil || cfg.CoverCache != nil {
		booksController.SetCoverHandling(cfg.CoverProcessor, cfg.CoverCache)
	}
	if cfg.TaskClient != nil {
		booksController.SetTaskClient(cfg.TaskClient)
	}

	loansController := NewLoansController(cfg.Catalog)

	// Routes for any signed-in member
	member := router.Group("/api", auth.RequireAuth())
	{
		member.GET("/books", booksController.ListBooks)
		member.GET("/books/:id", booksController.GetBook)
		member.GET("/books/:id/cover", booksController.GetCover)
		member.POST("/books/:id/issue", booksController.IssueBook)
		member.POST("/books/:id/return", booksController.ReturnBook)
		member.GET("/loans", loansController.MyLoans)
	}

	// Catalog and account administration
	admin := router.Group("/api", auth.RequireAuth(), auth.RequireAdmin())
	{
		admin.POST("/books", booksController.CreateBook)
		admin.PATCH("/books/:id", booksController.UpdateBook)
		admin.DELETE("/books/:id", booksController.DeleteBook)
		admin.POST("/books/:id/cover", booksController.UploadCover)
		admin.POST("/books/:id/enrich", booksController.EnqueueEnrich)
		admin.GET("/loans/all", loansController.AllLoans)

		if cfg.Enricher != nil {
			enrichController := NewEnrichController(cfg.Enricher)
			admin.POST("/enrich/suggest", enrichController.Suggest)
		}

		if cfg.AuthService != nil {
			usersController := NewUsersController(cfg.AuthService)
			admin.GET("/users", usersController.ListUsers)
			admin.POST("/users", usersController.CreateUser)
			admin.GET("/users/:id", usersController.GetUser)
			admin.PATCH("/users/:id", usersController.UpdateUser)
			admin.DELETE("/users/:id", usersController.DeleteUser)
		}

		if cfg.AuditRepo != nil {
			auditController := NewAuditController(cfg.AuditRepo)
			admin.GET("/audit", auditController.ListEvents)
			admin.GET("/books/:id/history", auditController.BookHistory)
		}
	}

	return router
}
