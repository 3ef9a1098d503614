package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/services"
)

// BookVerifier re-checks a single book against its loans.
type BookVerifier interface {
	VerifyBook(ctx context.Context, bookID string) ([]services.Inconsistency, error)
}

// VerifyBookConsistencyTask re-examines a book after a lending operation
// reported that its availability flag and loans disagree.
type VerifyBookConsistencyTask struct {
	BookID string `json:"book_id"`
	LoanID string `json:"loan_id,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Config returns the queue configuration for book verification tasks.
func (t VerifyBookConsistencyTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "verify_book_consistency",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// VerifyBookConsistencyProcessor logs whether the reported disagreement is
// still present. Verifier errors are returned so backlite retries the task.
func VerifyBookConsistencyProcessor(verifier BookVerifier) backlite.QueueProcessor[VerifyBookConsistencyTask] {
	return func(ctx context.Context, task VerifyBookConsistencyTask) error {
		if verifier == nil {
			return fmt.Errorf("book verifier not configured")
		}

		issues, err := verifier.VerifyBook(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("verify book %s: %w", task.BookID, err)
		}

		if len(issues) == 0 {
			log.Printf("[TASK] book %s is consistent again (reported %s)", task.BookID, task.Kind)
			return nil
		}
		for _, issue := range issues {
			log.Printf("[TASK] book %s still inconsistent: %s", task.BookID, issue)
		}
		return nil
	}
}

// NewVerifyBookConsistencyQueue creates a backlite queue for book verification tasks.
func NewVerifyBookConsistencyQueue(verifier BookVerifier) backlite.Queue {
	return backlite.NewQueue(VerifyBookConsistencyProcessor(verifier))
}
