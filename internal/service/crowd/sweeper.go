// internal/service/crowd/sweeper.go

package crowd

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"crowdbalance/internal/domain/crowd"
)

// SweeperConfig contains configuration for the expiry sweeper
type SweeperConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// Sweeper periodically visits every location and physically discards
// expired activity events so logs stay bounded. Score reads never depend on
// it having run; they re-filter by timestamp themselves.
type Sweeper struct {
	store  LocationStore
	config SweeperConfig
	now    func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSweeper creates a new expiry sweeper
func NewSweeper(store LocationStore, config SweeperConfig) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.Retention <= 0 {
		config.Retention = crowd.DefaultRetention
	}

	return &Sweeper{
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// Start begins the periodic sweep loop
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("sweeper already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx)

	return nil
}

// Stop halts the sweep loop, waiting for an in-flight pass to finish
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report := s.SweepAll(ctx, s.config.Retention)
			if report.Removed > 0 || report.Failed > 0 {
				log.Printf("Activity log sweep: %d locations swept, %d events removed, %d failures",
					report.Swept, report.Removed, report.Failed)
			}
		}
	}
}

// SweepAll prunes expired events across all locations, active and inactive.
// A failure on one location is recorded and the pass moves on; it never
// aborts the rest. Running it twice in quick succession is safe; the
// second pass finds nothing left to prune.
func (s *Sweeper) SweepAll(ctx context.Context, retention time.Duration) crowd.SweepReport {
	if retention <= 0 {
		retention = s.config.Retention
	}

	var report crowd.SweepReport

	locations, err := s.store.FindLocations(ctx, true)
	if err != nil {
		log.Printf("Sweep could not list locations: %v", err)
		report.Failed = 1
		report.Failures = append(report.Failures, crowd.SweepFailure{Error: err.Error()})
		return report
	}

	cutoff := s.now().Add(-retention)

	for _, loc := range locations {
		removed, err := s.store.PruneEvents(ctx, loc.ID, cutoff)
		if err != nil {
			log.Printf("Sweep failed for location %s: %v", loc.ID, err)
			report.Failed++
			report.Failures = append(report.Failures, crowd.SweepFailure{
				LocationID: loc.ID,
				Error:      err.Error(),
			})
			continue
		}

		report.Swept++
		report.Removed += removed
	}

	return report
}
