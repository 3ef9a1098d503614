package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/services"
)

// Checker audits catalog availability against open loans without changing anything.
type Checker interface {
	Check(ctx context.Context) (services.ConsistencyReport, error)
}

// ReportObserver receives every scheduled report.
type ReportObserver func(action string, report services.ConsistencyReport, err error)

// ConsistencyScheduler runs a report-only consistency check on a cron schedule.
type ConsistencyScheduler struct {
	checker  Checker
	observer ReportObserver
	settings config.Consistency

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	runMu      sync.Mutex
	reportMu   sync.RWMutex
	lastReport *services.ConsistencyReport
}

func NewConsistencyScheduler(checker Checker, observer ReportObserver, settings config.Consistency) *ConsistencyScheduler {
	return &ConsistencyScheduler{
		checker:  checker,
		observer: observer,
		settings: settings,
		cron:     cron.New(cron.WithParser(newParser())),
	}
}

// Start begins the scheduler if checks are enabled
func (s *ConsistencyScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.settings.Enabled {
		log.Printf("[SCHEDULER] consistency check: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.settings.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.settings.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.settings.Schedule, func() {
		_, _ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule consistency check: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.settings.Schedule, time.Now())
	log.Printf("[SCHEDULER] consistency check: started with schedule '%s' (%s). Next run: %v",
		s.settings.Schedule,
		CronDescription(s.settings.Schedule),
		nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running check to finish, then stops scheduling.
func (s *ConsistencyScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("[SCHEDULER] consistency check: stopped")
}

// RunNow performs a check immediately. Overlapping runs are serialized.
func (s *ConsistencyScheduler) RunNow(ctx context.Context) (services.ConsistencyReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now()
	report, err := s.checker.Check(ctx)
	if s.observer != nil {
		s.observer("scheduled_check", report, err)
	}
	if err != nil {
		log.Printf("[SCHEDULER] consistency check failed: %v", err)
		return report, err
	}

	s.reportMu.Lock()
	s.lastReport = &report
	s.reportMu.Unlock()

	if report.Consistent() {
		log.Printf("[SCHEDULER] consistency check: %d books and %d loans agree (%v)",
			report.CheckedBooks, report.CheckedLoans, time.Since(started).Round(time.Millisecond))
	} else {
		log.Printf("[SCHEDULER] consistency check: %d issues across %d books", len(report.Issues), report.CheckedBooks)
		for _, issue := range report.Issues {
			log.Printf("[SCHEDULER]   %s", issue)
		}
	}
	return report, nil
}

// LastReport returns the result of the most recent successful check.
func (s *ConsistencyScheduler) LastReport() *services.ConsistencyReport {
	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	return s.lastReport
}

func (s *ConsistencyScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next check will occur
func (s *ConsistencyScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
