package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Optional dependencies left nil in RouterConfig disable their routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(NewReadOnlyMiddleware(cfg.ReadOnly).Handler())

	health := NewHealthController(cfg.Version).
		AddCheck("catalog", CatalogProbe(cfg.Catalog)).
		AddCheck("database", cfg.Database)
	if probe, ok := cfg.TaskQueue.(Pinger); ok {
		health.AddCheck("tasks", probe)
	}
	booksController := NewBooksController(cfg.Catalog)
	usersController := NewUsersController(cfg.Members)
	loansController := NewLoansController(cfg.Catalog, cfg.Members, cfg.Lending, cfg.Orchestrator)

	// Health endpoints
	router.GET("/health", health.Status)
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := router.Group("/api")

	// Catalog
	api.GET("/books", booksController.ListBooks)
	api.POST("/books", booksController.CreateBook)
	api.GET("/books/:id", booksController.GetBook)
	api.PUT("/books/:id", booksController.UpdateBook)
	api.DELETE("/books/:id", booksController.DeleteBook)
	api.GET("/genres", booksController.ListGenres)

	// Membership
	api.GET("/users", usersController.ListUsers)
	api.POST("/users", usersController.RegisterUser)
	api.GET("/users/:id", usersController.GetUser)

	// Lending
	api.GET("/loans", loansController.ListLoans)
	api.POST("/loans", loansController.CreateLoan)
	api.GET("/loans/:id", loansController.GetLoan)
	api.POST("/loans/:id/return", loansController.ReturnLoan)

	if cfg.Checker != nil {
		consistencyController := NewConsistencyController(cfg.Checker)
		api.GET("/consistency", consistencyController.Report)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// Front end
	if cfg.StaticPath != "" {
		router.NoRoute(NewStaticController(cfg.StaticPath).Serve)
	}

	return router
}
