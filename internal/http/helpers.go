package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// ConsistencyWarningHeader is set on lending responses whose loan change was
// persisted while the paired availability update was not.
const ConsistencyWarningHeader = "X-Consistency-Warning"

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// PageResponse wraps one page of a listing.
type PageResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondValidationError sends a 400 naming the offending field.
func respondValidationError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: "validation_failed"}
	var ve *entities.ValidationError
	if errors.As(err, &ve) {
		resp.Details = gin.H{"field": ve.Field}
	}
	c.JSON(http.StatusBadRequest, resp)
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondConflict sends a 409 Conflict response.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: message, Code: "conflict"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("[HTTP] internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondServiceError maps service and validation errors onto status codes.
func respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, entities.ErrValidation):
		respondValidationError(c, err)
	case errors.Is(err, services.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, services.ErrUserNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, services.ErrLoanNotFound):
		respondNotFound(c, "loan")
	case errors.Is(err, services.ErrBookUnavailable):
		respondConflict(c, "book is not available")
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, data)
}

// --- Parameter Parsing ---

// parseIntQuery reads an optional integer query parameter.
// Responds with 400 and returns false when the value is not a number.
func parseIntQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

// pageBounds clamps an offset/limit window onto a listing of total items.
func pageBounds(total, offset, limit int) (start, end int) {
	start = max(0, min(total, offset))
	end = start + min(max(1, limit), total-start)
	return start, end
}

func paginate[T any](items []T, offset, limit int) PageResponse[T] {
	start, end := pageBounds(len(items), offset, limit)
	return PageResponse[T]{
		Items:  items[start:end],
		Total:  len(items),
		Limit:  max(1, limit),
		Offset: start,
	}
}

func applyWarning(c *gin.Context, outcome services.LoanOutcome) {
	if outcome.Partial() {
		c.Header(ConsistencyWarningHeader, string(outcome.Inconsistency.Kind))
	}
}
