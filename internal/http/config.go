package http

import (
	"context"
	"net/http"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/services"
)

// ConsistencyChecker produces the report served by GET /api/consistency.
type ConsistencyChecker interface {
	Check(ctx context.Context) (services.ConsistencyReport, error)
}

// TaskQueue is the part of the task client the API needs.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	Catalog      *services.CatalogService
	Members      *services.MembershipService
	Lending      *services.LendingService
	Orchestrator *services.LendingOrchestrator
	Checker      ConsistencyChecker

	// Database is pinged by /health when a SQLite backend is in use (optional)
	Database Pinger

	// MetricsHandler serves /metrics (optional)
	MetricsHandler http.Handler

	// Task queue client (optional)
	TaskQueue TaskQueue

	// Directory holding the static front end; empty disables static serving
	StaticPath string

	// ReadOnly rejects every write request with 403
	ReadOnly bool

	// Application info
	Version string
}
