package timer

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// timerEntry tracks information about a scheduled timer
type timerEntry struct {
	timer       *time.Timer
	scheduledAt time.Time
	expiresAt   time.Time
}

// SimpleTimer implements Timer on the wall clock with time.AfterFunc.
// Callbacks run on their own goroutine.
type SimpleTimer struct {
	timers map[string]*timerEntry
	mu     sync.RWMutex
	nextID int64
}

// NewSimpleTimer creates a new SimpleTimer.
func NewSimpleTimer() *SimpleTimer {
	slog.Debug("Creating SimpleTimer")
	return &SimpleTimer{
		timers: make(map[string]*timerEntry),
	}
}

// Now returns the wall-clock time.
func (t *SimpleTimer) Now() time.Time {
	return time.Now()
}

// ScheduleAfter schedules a function to run after a delay.
func (t *SimpleTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("SimpleTimer.ScheduleAfter: nil callback")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	id := fmt.Sprintf("timer_%d", t.nextID)
	now := time.Now()

	// Registered under the lock so a zero delay cannot fire before the entry exists.
	t.timers[id] = &timerEntry{
		scheduledAt: now,
		expiresAt:   now.Add(delay),
		timer: time.AfterFunc(delay, func() {
			t.mu.Lock()
			_, live := t.timers[id]
			delete(t.timers, id)
			t.mu.Unlock()
			if !live {
				return
			}
			slog.Debug("SimpleTimer.ScheduleAfter: executing scheduled function", "id", id)
			fn()
		}),
	}

	slog.Debug("SimpleTimer.ScheduleAfter: scheduled", "id", id, "delay", delay)
	return id, nil
}

// Cancel cancels a scheduled function by ID.
func (t *SimpleTimer) Cancel(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := t.timers[id]; exists {
		entry.timer.Stop()
		delete(t.timers, id)
		slog.Debug("SimpleTimer.Cancel: cancelled", "id", id)
		return nil
	}

	slog.Debug("SimpleTimer.Cancel: timer not found", "id", id)
	return nil
}

// Stop cancels all scheduled timers.
func (t *SimpleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, entry := range t.timers {
		entry.timer.Stop()
	}
	slog.Debug("SimpleTimer.Stop: stopped all timers", "count", len(t.timers))
	t.timers = make(map[string]*timerEntry)
}

// ListActive returns information about all active timers, soonest first.
func (t *SimpleTimer) ListActive() []Info {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	result := make([]Info, 0, len(t.timers))
	for id, entry := range t.timers {
		result = append(result, entry.info(id, now))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExpiresAt.Before(result[j].ExpiresAt) })
	return result
}

// GetTimer returns information about a specific timer by ID.
func (t *SimpleTimer) GetTimer(id string) (Info, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, exists := t.timers[id]
	if !exists {
		return Info{}, fmt.Errorf("SimpleTimer.GetTimer %s: %w", id, ErrTimerNotFound)
	}
	return entry.info(id, time.Now()), nil
}

func (e *timerEntry) info(id string, now time.Time) Info {
	return Info{
		ID:          id,
		ScheduledAt: e.scheduledAt,
		ExpiresAt:   e.expiresAt,
		Remaining:   max(e.expiresAt.Sub(now), 0),
	}
}
