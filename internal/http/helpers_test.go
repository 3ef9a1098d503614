package http

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		total, offset, limit int
		start, end           int
	}{
		{10, 0, 20, 0, 10},
		{10, 5, 3, 5, 8},
		{10, 20, 5, 10, 10},
		{10, -3, 2, 0, 2},
		{10, 0, 0, 0, 1},
		{10, 0, -7, 0, 1},
		{0, 0, 20, 0, 0},
		{3, 1, math.MaxInt, 1, 3},
		{3, math.MaxInt, math.MaxInt, 3, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d offset=%d limit=%d", tt.total, tt.offset, tt.limit), func(t *testing.T) {
			start, end := pageBounds(tt.total, tt.offset, tt.limit)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPaginateHugeLimit(t *testing.T) {
	page := paginate([]int{1, 2, 3}, 1, math.MaxInt)
	assert.Equal(t, []int{2, 3}, page.Items)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Offset)
}

func TestParseIntQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?limit=5&bad=x", nil)

	v, ok := parseIntQuery(c, "limit", 20)
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	v, ok = parseIntQuery(c, "offset", 7)
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = parseIntQuery(c, "bad", 0)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid bad")
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{&entities.ValidationError{Field: "title", Message: "must not be empty"}, http.StatusBadRequest},
		{services.ErrBookNotFound, http.StatusNotFound},
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrLoanNotFound, http.StatusNotFound},
		{services.ErrBookUnavailable, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", services.ErrBookNotFound), http.StatusNotFound},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondServiceError(c, tt.err, "test")
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
