package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// InconsistencySignal receives reconciliation-needed notices raised when one half
// of a loan operation was persisted and the paired book update was not.
// Implementations must not block for long: they run inline with the request.
type InconsistencySignal interface {
	Signal(ctx context.Context, issue Inconsistency)
}

// SignalFunc adapts a function to InconsistencySignal.
type SignalFunc func(ctx context.Context, issue Inconsistency)

func (f SignalFunc) Signal(ctx context.Context, issue Inconsistency) {
	f(ctx, issue)
}

// MultiSignal fans a notice out to every sink in order.
type MultiSignal []InconsistencySignal

func (m MultiSignal) Signal(ctx context.Context, issue Inconsistency) {
	for _, s := range m {
		if s != nil {
			s.Signal(ctx, issue)
		}
	}
}

// LogSignal writes the notice to the standard logger.
var LogSignal = SignalFunc(func(_ context.Context, issue Inconsistency) {
	log.Printf("[LENDING] WARNING reconciliation needed: %s", issue)
})

// LendingMetrics observes orchestrated loan outcomes.
type LendingMetrics interface {
	LoanCreated()
	LoanReturned()
	LoanRejected(reason string)
}

type noopMetrics struct{}

func (noopMetrics) LoanCreated()        {}
func (noopMetrics) LoanReturned()       {}
func (noopMetrics) LoanRejected(string) {}

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh opaque identifier.
type IDGenerator func() string

func systemClock() time.Time {
	return time.Now().UTC()
}

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}
