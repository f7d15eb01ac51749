package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/librarium/internal/enrich"
)

type SuggestRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
}

// EnrichController serves synchronous metadata suggestions, used to
// assist the add-book form before a record exists.
type EnrichController struct {
	enricher *enrich.Enricher
}

func NewEnrichController(enricher *enrich.Enricher) *EnrichController {
	return &EnrichController{enricher: enricher}
}

// Suggest fetches provider suggestions for a title. Best effort: the
// caller is expected to treat failures as "no suggestions".
func (controller *EnrichController) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	metadata, err := controller.enricher.Suggest(c.Request.Context(), req.Title, req.Author)
	if err != nil {
		respondDomainError(c, err, "suggest metadata")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": metadata})
}
