/*
scheduler.go - Automated trip-completion sweeper

PURPOSE:
  Periodically marks approved itineraries whose end date has passed as
  Completed, so the dashboard reflects finished trips without manual
  intervention.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - A single UPDATE per sweep; already-terminal records are untouched
  - Runs once immediately on start

USAGE:
  sweeper := NewCompletionSweeper(store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - store/sqlite: CompleteExpired
  - handlers.go: status lifecycle endpoints
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/travel-desk/itinerary"
	"github.com/warp/travel-desk/store/sqlite"
)

// CompletionSweeper moves approved itineraries past their end date to
// Completed.
type CompletionSweeper struct {
	Store         *sqlite.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCompletionSweeper creates a sweeper with the default hourly interval.
func NewCompletionSweeper(store *sqlite.Store) *CompletionSweeper {
	return &CompletionSweeper{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (cs *CompletionSweeper) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Sweeper] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the sweeper.
func (cs *CompletionSweeper) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (cs *CompletionSweeper) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep()

	for {
		select {
		case <-cs.ticker.C:
			cs.sweep()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CompletionSweeper) sweep() {
	ctx := context.Background()
	today := itinerary.Today().String()

	n, err := cs.Store.CompleteExpired(ctx, today)
	if err != nil {
		log.Printf("[Sweeper] Error completing expired itineraries: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Sweeper] Marked %d itinerary(ies) completed as of %s", n, today)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CompletionSweeper) RunNow() {
	cs.sweep()
}
