package enforcement

import (
	"log"
	"sync"
	"time"
)

// DefaultSweepInterval is the tick spacing when none is configured.
// Scheduled times are honored at sweep-interval granularity, not exact
// wall clock.
const DefaultSweepInterval = 5 * time.Second

// Scheduler drives the service's periodic sweep. It holds no record
// state of its own, only the tick timer, so stopping and restarting it
// loses nothing.
type Scheduler struct {
	service  *Service
	interval time.Duration

	done chan struct{}
	wake chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{
		service:  service,
		interval: interval,
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Start launches the sweep loop.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("Enforcement scheduler started with %s interval", s.interval)
}

// Stop terminates the sweep loop and waits for an in-flight sweep.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
	log.Println("Enforcement scheduler stopped.")
}

// Wake requests an out-of-band sweep, used after creating an immediate
// action so it does not wait for the next tick. Non-blocking; a pending
// wake coalesces with later ones.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.service.ProcessDue()
		case <-s.wake:
			s.service.ProcessDue()
		case <-s.done:
			return
		}
	}
}
