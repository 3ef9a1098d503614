package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/loans"
	"github.com/mrlokans/library/internal/database/users"
	"github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/metrics"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/services"
	"github.com/mrlokans/library/internal/storage"
	"github.com/mrlokans/library/internal/storage/csvfile"
	"github.com/mrlokans/library/internal/storage/jsonfile"
	"github.com/mrlokans/library/internal/storage/memory"
	"github.com/mrlokans/library/internal/tasks"
)

// =============================================================================
// Storage Port
// =============================================================================

// CatalogStore implementations
var _ storage.CatalogStore = (*memory.CatalogStore)(nil)
var _ storage.CatalogStore = (*csvfile.CatalogStore)(nil)
var _ storage.CatalogStore = (*jsonfile.CatalogStore)(nil)
var _ storage.CatalogStore = (*books.Repository)(nil)

// UserStore implementations
var _ storage.UserStore = (*memory.UserStore)(nil)
var _ storage.UserStore = (*jsonfile.UserStore)(nil)
var _ storage.UserStore = (*users.Repository)(nil)

// LoanStore implementations
var _ storage.LoanStore = (*memory.LoanStore)(nil)
var _ storage.LoanStore = (*jsonfile.LoanStore)(nil)
var _ storage.LoanStore = (*loans.Repository)(nil)

// =============================================================================
// Reconciliation Signals
// =============================================================================

// InconsistencySignal implementations
var _ services.InconsistencySignal = services.SignalFunc(nil)
var _ services.InconsistencySignal = services.MultiSignal(nil)
var _ services.InconsistencySignal = (*audit.Service)(nil)
var _ services.InconsistencySignal = (*metrics.Collector)(nil)
var _ services.InconsistencySignal = (*tasks.VerificationSignal)(nil)

// LendingMetrics implementations
var _ services.LendingMetrics = (*metrics.Collector)(nil)

// =============================================================================
// Consistency Checks
// =============================================================================

var _ http.ConsistencyChecker = (*services.Reconciler)(nil)
var _ scheduler.Checker = (*services.Reconciler)(nil)
var _ tasks.ConsistencyChecker = (*services.Reconciler)(nil)
var _ tasks.BookVerifier = (*services.Reconciler)(nil)

// =============================================================================
// HTTP Dependencies
// =============================================================================

var _ http.Pinger = (*database.Database)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.Enqueuer = (*tasks.Client)(nil)
