package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/covers"
	"github.com/avolkau/librarium/internal/enrich"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 response. The
// actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps known domain errors onto HTTP statuses, so
// controllers share one taxonomy instead of each inventing their own.
func respondDomainError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, catalog.ErrTitleRequired):
		respondBadRequest(c, err.Error())
	case errors.Is(err, catalog.ErrAlreadyIssued):
		respondError(c, http.StatusConflict, "book is already issued", "already_issued")
	case errors.Is(err, catalog.ErrNotIssued):
		respondError(c, http.StatusConflict, "book is not currently issued", "not_issued")
	case errors.Is(err, auth.ErrUserNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, auth.ErrDuplicateLibraryID):
		respondError(c, http.StatusConflict, "library ID is already taken", "duplicate_library_id")
	case errors.Is(err, auth.ErrNameRequired),
		errors.Is(err, auth.ErrLibraryIDRequired),
		errors.Is(err, auth.ErrPasswordRequired),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidRole):
		respondBadRequest(c, err.Error())
	case errors.Is(err, auth.ErrSelfDelete):
		respondError(c, http.StatusConflict, err.Error(), "self_delete")
	case errors.Is(err, enrich.ErrNotConfigured):
		respondError(c, http.StatusServiceUnavailable, "enrichment is not configured", "enrich_not_configured")
	case errors.Is(err, enrich.ErrUnavailable):
		respondError(c, http.StatusBadGateway, "enrichment service is unavailable", "enrich_unavailable")
	case errors.Is(err, covers.ErrUnsupportedImage):
		respondError(c, http.StatusUnprocessableEntity, "unsupported or corrupt image", "bad_image")
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
