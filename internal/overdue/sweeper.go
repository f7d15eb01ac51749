// Package overdue periodically scans open loans and records the ones
// past their due date. Fines stay derived at read time; the sweep only
// reports, it never writes to book records.
package overdue

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/catalog"
	"github.com/avolkau/librarium/internal/config"
)

// OverdueReporter records an overdue loan.
type OverdueReporter interface {
	LogOverdue(userID, bookID uint, description string)
}

// Sweeper manages the periodic overdue scan.
type Sweeper struct {
	catalog  *catalog.Service
	reporter OverdueReporter
	config   config.Overdue

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewSweeper creates a sweeper instance. The reporter is optional.
func NewSweeper(catalogSvc *catalog.Service, reporter OverdueReporter, cfg config.Overdue) *Sweeper {
	return &Sweeper{
		catalog:  catalogSvc,
		reporter: reporter,
		config:   cfg,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Overdue sweep: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunOnce(); err != nil {
			log.Printf("Overdue sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.config.Schedule, err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue sweep: started with schedule '%s'", s.config.Schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Overdue sweep: stopped")
}

// RunOnce scans all open loans and reports the overdue ones. Returns
// how many loans were overdue.
func (s *Sweeper) RunOnce() (int, error) {
	loans, err := s.catalog.AllLoans()
	if err != nil {
		return 0, fmt.Errorf("list loans: %w", err)
	}

	overdue := 0
	for _, loan := range loans {
		if loan.OverdueDays == 0 {
			continue
		}
		overdue++

		description := fmt.Sprintf("Loan overdue by %d day(s), fine %d: %s",
			loan.OverdueDays, loan.Fine, loan.Book.Title)
		log.Printf("Overdue sweep: user %d, book %d: %s", loan.IssuedTo, loan.Book.ID, description)

		if s.reporter != nil {
			s.reporter.LogOverdue(loan.IssuedTo, loan.Book.ID, description)
		}
	}

	if overdue > 0 {
		log.Printf("Overdue sweep: %d of %d open loans are overdue", overdue, len(loans))
	}

	return overdue, nil
}
