package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

const defaultPageSize = 20

type BooksController struct {
	catalog *services.CatalogService
}

func NewBooksController(catalog *services.CatalogService) *BooksController {
	return &BooksController{
		catalog: catalog,
	}
}

// BookRequest is the body of POST /api/books and PUT /api/books/:id.
type BookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublicationYear int    `json:"publicationYear"`
	ISBN            string `json:"isbn"`
}

// ListBooks handles GET /api/books?q=&limit=&offset=&author=&genre=&year=
func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit", defaultPageSize)
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	if c.Query("offset") == "" {
		// skip is accepted as an alias of offset
		if offset, ok = parseIntQuery(c, "skip", 0); !ok {
			return
		}
	}
	year, ok := parseIntQuery(c, "year", 0)
	if !ok {
		return
	}
	filter := services.BookFilter{
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
		Year:   year,
	}

	books, err := controller.catalog.Search(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	if !filter.IsEmpty() {
		matched := books[:0]
		for _, b := range books {
			if filter.Matches(b) {
				matched = append(matched, b)
			}
		}
		books = matched
	}

	c.JSON(http.StatusOK, paginate(books, offset, limit))
}

// GetBook handles GET /api/books/:id
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.catalog.GetBook(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /api/books
func (controller *BooksController) CreateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := controller.catalog.CreateBook(req.Title, req.Author, entities.ParseGenre(req.Genre), req.PublicationYear, req.ISBN)
	if err != nil {
		respondServiceError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// UpdateBook handles PUT /api/books/:id. Availability is owned by lending
// and cannot be changed here.
func (controller *BooksController) UpdateBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	current, err := controller.catalog.GetBook(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}

	current.Title = strings.TrimSpace(req.Title)
	current.Author = strings.TrimSpace(req.Author)
	current.Genre = entities.ParseGenre(req.Genre)
	current.PublicationYear = req.PublicationYear
	current.ISBN = strings.TrimSpace(req.ISBN)

	updated, err := controller.catalog.UpdateBook(current)
	if err != nil {
		respondServiceError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteBook handles DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	if err := controller.catalog.DeleteBook(c.Param("id")); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

// GenreInfo describes one entry of the genre menu.
type GenreInfo struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Name  string `json:"name"`
}

// ListGenres handles GET /api/genres
func (controller *BooksController) ListGenres(c *gin.Context) {
	genres := entities.Genres()
	out := make([]GenreInfo, 0, len(genres))
	for i, g := range genres {
		out = append(out, GenreInfo{Index: i + 1, Key: string(g), Name: g.DisplayName()})
	}
	c.JSON(http.StatusOK, out)
}
