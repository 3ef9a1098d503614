package entities

import "time"

type AuditEventType string

const (
	AuditEventInconsistency AuditEventType = "inconsistency"
	AuditEventReconcile     AuditEventType = "reconcile"
)

type AuditStatus string

const (
	AuditStatusDetected AuditStatus = "detected"
	AuditStatusRepaired AuditStatus = "repaired"
	AuditStatusFailed   AuditStatus = "failed"
)

// AuditEvent is one entry of the lending audit trail.
type AuditEvent struct {
	ID          string            `json:"id"`
	EventType   AuditEventType    `json:"event_type"`
	Action      string            `json:"action"`      // e.g. "request_loan", "bootstrap"
	Description string            `json:"description"` // Human-readable summary
	BookID      string            `json:"book_id,omitempty"`
	LoanID      string            `json:"loan_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Status      AuditStatus       `json:"status"`
	ErrorMsg    string            `json:"error_msg,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
