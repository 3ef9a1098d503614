package tasks

import (
	"context"
	"log"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/services"
)

// Enqueuer is the part of Client the signal needs.
type Enqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// VerificationSignal schedules a background re-check of every book a lending
// operation left inconsistent.
type VerificationSignal struct {
	queue Enqueuer
}

func NewVerificationSignal(queue Enqueuer) *VerificationSignal {
	return &VerificationSignal{queue: queue}
}

func (s *VerificationSignal) Signal(ctx context.Context, issue services.Inconsistency) {
	if issue.BookID == "" {
		return
	}
	task := VerifyBookConsistencyTask{
		BookID: issue.BookID,
		LoanID: issue.LoanID,
		Kind:   string(issue.Kind),
	}
	ids, err := s.queue.Add(task).Ctx(ctx).Save()
	if err != nil {
		log.Printf("[TASK] failed to enqueue verification for book %s: %v", issue.BookID, err)
		return
	}
	log.Printf("[TASK] queued verification %s for book %s", ids[0], issue.BookID)
}
