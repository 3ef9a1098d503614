package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

const unknownPlaceholder = "[unknown]"

var timeNow = time.Now

type LoansController struct {
	catalog      *services.CatalogService
	members      *services.MembershipService
	lending      *services.LendingService
	orchestrator *services.LendingOrchestrator
}

func NewLoansController(catalog *services.CatalogService, members *services.MembershipService, lending *services.LendingService, orchestrator *services.LendingOrchestrator) *LoansController {
	return &LoansController{
		catalog:      catalog,
		members:      members,
		lending:      lending,
		orchestrator: orchestrator,
	}
}

// LoanView is a loan enriched with the book title and borrower name.
type LoanView struct {
	entities.Loan
	BookTitle string `json:"bookTitle"`
	UserName  string `json:"userName"`
	Overdue   bool   `json:"overdue"`
}

type CreateLoanRequest struct {
	BookID string `json:"bookId"`
	UserID string `json:"userId"`
	Days   int    `json:"days"`
}

// ListLoans handles GET /api/loans
func (lc *LoansController) ListLoans(c *gin.Context) {
	loans, err := lc.lending.ListLoans()
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	titles := make(map[string]string)
	names := make(map[string]string)
	out := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		out = append(out, LoanView{
			Loan:      l,
			BookTitle: lc.lookup(titles, l.BookID, lc.bookTitle),
			UserName:  lc.lookup(names, l.UserID, lc.userName),
			Overdue:   l.IsOverdue(timeNow()),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (lc *LoansController) lookup(cache map[string]string, id string, resolve func(string) string) string {
	if v, ok := cache[id]; ok {
		return v
	}
	v := resolve(id)
	cache[id] = v
	return v
}

func (lc *LoansController) bookTitle(id string) string {
	book, err := lc.catalog.GetBook(id)
	if err != nil {
		return unknownPlaceholder
	}
	return book.Title
}

func (lc *LoansController) userName(id string) string {
	user, err := lc.members.GetUser(id)
	if err != nil {
		return unknownPlaceholder
	}
	return user.Name
}

// GetLoan handles GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	loan, err := lc.lending.GetLoan(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// CreateLoan handles POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.BookID == "" || req.UserID == "" {
		respondBadRequest(c, "bookId and userId are required")
		return
	}
	if req.Days < 0 {
		respondBadRequest(c, "days must not be negative")
		return
	}

	outcome, err := lc.orchestrator.RequestLoan(c.Request.Context(), req.BookID, req.UserID, req.Days)
	if err != nil {
		if errors.Is(err, services.ErrBookUnavailable) {
			respondConflict(c, "book is already on loan")
			return
		}
		respondServiceError(c, err, "create loan")
		return
	}

	applyWarning(c, outcome)
	respondCreated(c, outcome.Loan)
}

// ReturnLoan handles POST /api/loans/:id/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	outcome, err := lc.orchestrator.ReturnLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "return loan")
		return
	}

	applyWarning(c, outcome)
	c.JSON(http.StatusOK, outcome.Loan)
}
