package audit

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// Service records lending inconsistencies and reconciliation runs.
// It satisfies services.InconsistencySignal.
type Service struct {
	auditor *Auditor
	now     func() time.Time
}

func NewService(auditor *Auditor) *Service {
	return &Service{auditor: auditor, now: func() time.Time { return time.Now().UTC() }}
}

// Log records an audit event, stamping its creation time.
func (s *Service) Log(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	_, err := s.auditor.SaveEvent(event)
	return err
}

// Signal writes the inconsistency synchronously so the record exists
// by the time the caller reports the partial outcome.
func (s *Service) Signal(_ context.Context, issue services.Inconsistency) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventInconsistency,
		Action:      issue.Operation,
		Description: issue.String(),
		BookID:      issue.BookID,
		LoanID:      issue.LoanID,
		Metadata: map[string]string{
			"kind":   string(issue.Kind),
			"detail": truncate(issue.Detail, 500),
		},
		Status:    entities.AuditStatusDetected,
		CreatedAt: issue.DetectedAt,
	}
	if err := s.Log(event); err != nil {
		log.Printf("[AUDIT] failed to record inconsistency for book %s: %v", issue.BookID, err)
	}
}

// LogReconcile records the summary of a check, bootstrap or repair run.
func (s *Service) LogReconcile(action string, report services.ConsistencyReport, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReconcile,
		Action:      action,
		Description: action + " finished",
		Metadata: map[string]string{
			"checked_books": strconv.Itoa(report.CheckedBooks),
			"checked_loans": strconv.Itoa(report.CheckedLoans),
			"remaining":     strconv.Itoa(len(report.Issues)),
			"repaired":      strconv.Itoa(len(report.Repaired)),
		},
		Status: entities.AuditStatusRepaired,
	}

	switch {
	case err != nil:
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	case len(report.Issues) > 0:
		event.Status = entities.AuditStatusDetected
	}

	if logErr := s.Log(event); logErr != nil {
		log.Printf("[AUDIT] failed to record %s run: %v", action, logErr)
	}
}

// Events returns the recorded trail, oldest first.
func (s *Service) Events() ([]entities.AuditEvent, error) {
	return s.auditor.Events()
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
