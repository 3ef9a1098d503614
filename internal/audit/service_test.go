package audit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewAuditor(t.TempDir()))
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Log(t *testing.T) {
	svc := setupTestService(t)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventReconcile,
		Action:      "test_reconcile",
		Description: "Test event",
		Status:      entities.AuditStatusRepaired,
	}
	require.NoError(t, svc.Log(event))
	assert.NotEmpty(t, event.ID)

	events, err := svc.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "test_reconcile", events[0].Action)
	assert.Equal(t, svc.now(), events[0].CreatedAt)
}

func TestService_SignalRecordsInconsistency(t *testing.T) {
	svc := setupTestService(t)
	var signal services.InconsistencySignal = svc

	detected := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	signal.Signal(context.Background(), services.Inconsistency{
		Kind:       services.KindOpenLoanBookAvailable,
		Operation:  "request_loan",
		BookID:     "b1",
		LoanID:     "l1",
		Detail:     "disk full",
		DetectedAt: detected,
	})

	events, err := svc.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, entities.AuditEventInconsistency, event.EventType)
	assert.Equal(t, entities.AuditStatusDetected, event.Status)
	assert.Equal(t, "request_loan", event.Action)
	assert.Equal(t, "b1", event.BookID)
	assert.Equal(t, "l1", event.LoanID)
	assert.Equal(t, string(services.KindOpenLoanBookAvailable), event.Metadata["kind"])
	assert.Equal(t, detected, event.CreatedAt)
}

func TestService_LogReconcile(t *testing.T) {
	tests := []struct {
		name     string
		report   services.ConsistencyReport
		err      error
		expected entities.AuditStatus
	}{
		{
			name:     "everything repaired",
			report:   services.ConsistencyReport{CheckedBooks: 3, Repaired: []services.Inconsistency{{Kind: services.KindUnavailableWithoutLoan}}},
			expected: entities.AuditStatusRepaired,
		},
		{
			name:     "issues remain",
			report:   services.ConsistencyReport{CheckedBooks: 3, Issues: []services.Inconsistency{{Kind: services.KindMultipleOpenLoans}}},
			expected: entities.AuditStatusDetected,
		},
		{
			name:     "run failed",
			err:      errors.New("catalog unreadable"),
			expected: entities.AuditStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupTestService(t)
			svc.LogReconcile("repair", tt.report, tt.err)

			events, err := svc.Events()
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.expected, events[0].Status)
			assert.Equal(t, entities.AuditEventReconcile, events[0].EventType)
			assert.Equal(t, strconv.Itoa(tt.report.CheckedBooks), events[0].Metadata["checked_books"])
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), events[0].ErrorMsg)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
