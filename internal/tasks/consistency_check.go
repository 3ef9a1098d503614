package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/services"
)

// ConsistencyChecker audits the whole catalog against the loan records.
type ConsistencyChecker interface {
	Check(ctx context.Context) (services.ConsistencyReport, error)
	Repair(ctx context.Context) (services.ConsistencyReport, error)
}

// ReportObserver receives the outcome of every check or repair run.
type ReportObserver func(action string, report services.ConsistencyReport, err error)

// ConsistencyCheckTask audits every book, optionally repairing what it can.
type ConsistencyCheckTask struct {
	Repair bool `json:"repair"`
}

// Config returns the queue configuration for full consistency checks.
func (t ConsistencyCheckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "consistency_check",
		MaxAttempts: 1,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ConsistencyCheckProcessor creates a processor function for ConsistencyCheckTask.
func ConsistencyCheckProcessor(checker ConsistencyChecker, observe ReportObserver) backlite.QueueProcessor[ConsistencyCheckTask] {
	return func(ctx context.Context, task ConsistencyCheckTask) error {
		if checker == nil {
			return fmt.Errorf("consistency checker not configured")
		}

		action, run := "check", checker.Check
		if task.Repair {
			action, run = "repair", checker.Repair
		}

		report, err := run(ctx)
		if observe != nil {
			observe(action, report, err)
		}
		if err != nil {
			return fmt.Errorf("consistency %s: %w", action, err)
		}

		log.Printf("[TASK] consistency %s: %d books, %d loans, %d issues, %d repaired",
			action, report.CheckedBooks, report.CheckedLoans, len(report.Issues), len(report.Repaired))
		return nil
	}
}

// NewConsistencyCheckQueue creates a backlite queue for full consistency checks.
func NewConsistencyCheckQueue(checker ConsistencyChecker, observe ReportObserver) backlite.Queue {
	return backlite.NewQueue(ConsistencyCheckProcessor(checker, observe))
}
