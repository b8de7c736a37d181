package session

import (
	"sync"
	"time"
)

// DefaultTickInterval is how often a running game's display timer fires.
const DefaultTickInterval = time.Second

// gameTimer drives the elapsed-time display of one court. It holds no state
// the engine depends on; the authoritative start time lives on the court.
type gameTimer struct {
	ticker *time.Ticker
	done   chan struct{}
}

type timers struct {
	mu       sync.Mutex
	interval time.Duration
	running  map[int]*gameTimer
}

func newTimers(interval time.Duration) *timers {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &timers{
		interval: interval,
		running:  make(map[int]*gameTimer),
	}
}

// start replaces any timer for the court with one measuring from startedAt.
func (t *timers) start(courtID int, startedAt time.Time, now func() time.Time, onTick TickFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.running[courtID]; ok {
		old.stop()
	}
	gt := &gameTimer{
		ticker: time.NewTicker(t.interval),
		done:   make(chan struct{}),
	}
	t.running[courtID] = gt

	go func() {
		for {
			select {
			case <-gt.done:
				return
			case <-gt.ticker.C:
				if onTick != nil {
					onTick(courtID, now().Sub(startedAt))
				}
			}
		}
	}()
}

func (t *timers) stop(courtID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gt, ok := t.running[courtID]; ok {
		gt.stop()
		delete(t.running, courtID)
	}
}

func (t *timers) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, gt := range t.running {
		gt.stop()
		delete(t.running, id)
	}
}

func (t *timers) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}

func (gt *gameTimer) stop() {
	gt.ticker.Stop()
	close(gt.done)
}
