package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/services"
)

type ConsistencyController struct {
	checker ConsistencyChecker
}

func NewConsistencyController(checker ConsistencyChecker) *ConsistencyController {
	return &ConsistencyController{checker: checker}
}

// Report handles GET /api/consistency. It never repairs anything.
func (cc *ConsistencyController) Report(c *gin.Context) {
	report, err := cc.checker.Check(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "consistency check")
		return
	}
	if report.Issues == nil {
		report.Issues = []services.Inconsistency{}
	}
	c.JSON(http.StatusOK, gin.H{
		"consistent":   report.Consistent(),
		"checkedBooks": report.CheckedBooks,
		"checkedLoans": report.CheckedLoans,
		"issues":       report.Issues,
	})
}
