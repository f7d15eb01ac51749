package http

import (
	"github.com/avolkau/librarium/internal/audit"
	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/covers"
	"github.com/avolkau/librarium/internal/database"
	auditRepo "github.com/avolkau/librarium/internal/database/audit"
	"github.com/avolkau/librarium/internal/enrich"
	"github.com/avolkau/librarium/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Catalog  *catalog.Service

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Auditing
	AuditService *audit.Service
	AuditRepo    *auditRepo.Repository

	// Enrichment (optional)
	Enricher *enrich.Enricher

	// Cover handling (optional)
	CoverProcessor *covers.Processor
	CoverCache     *covers.Cache

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
