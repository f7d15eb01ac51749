package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/librarium/internal/auth"
	"github.com/avolkau/librarium/internal/catalog"
)

// LoansController exposes the derived loan views. Due dates, overdue
// days and fines are computed at read time from the issue timestamp.
type LoansController struct {
	catalog *catalog.Service
}

func NewLoansController(catalogSvc *catalog.Service) *LoansController {
	return &LoansController{catalog: catalogSvc}
}

// MyLoans returns the signed-in member's open loans with their fines.
func (controller *LoansController) MyLoans(c *gin.Context) {
	loans, err := controller.catalog.LoansFor(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list my loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// AllLoans returns every open loan. Admin only; enforced by route
// middleware.
func (controller *LoansController) AllLoans(c *gin.Context) {
	loans, err := controller.catalog.AllLoans()
	if err != nil {
		respondInternalError(c, err, "list all loans")
		return
	}

	SetIssuedBooks(len(loans))
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}
