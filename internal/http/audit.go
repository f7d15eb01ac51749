package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditRepo "github.com/avolkau/librarium/internal/database/audit"
)

// AuditController serves the audit trail. Admin only; enforced by
// route middleware.
type AuditController struct {
	repo *auditRepo.Repository
}

func NewAuditController(repo *auditRepo.Repository) *AuditController {
	return &AuditController{repo: repo}
}

// ListEvents returns paginated audit events, newest first. Accepts
// optional user_id, limit and offset query parameters.
func (controller *AuditController) ListEvents(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, total, err := controller.repo.GetEvents(uint(userID), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}

// BookHistory returns the lending history of one book.
func (controller *AuditController) BookHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := controller.repo.GetEventsForBook(id, limit)
	if err != nil {
		respondInternalError(c, err, "book history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
