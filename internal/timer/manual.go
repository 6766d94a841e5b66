package timer

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type manualEntry struct {
	id  string
	seq int64
	due time.Time
	fn  func()
}

// ManualTimer is a Timer driven by a virtual clock. Callbacks only run inside
// Advance, on the caller's goroutine, in due-time order (ties in scheduling
// order).
type ManualTimer struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int64
	entries map[string]*manualEntry
}

// NewManualTimer returns a ManualTimer whose clock starts at start.
func NewManualTimer(start time.Time) *ManualTimer {
	return &ManualTimer{now: start, entries: make(map[string]*manualEntry)}
}

// Now returns the virtual time.
func (m *ManualTimer) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// ScheduleAfter registers fn to run once the clock has advanced by delay.
func (m *ManualTimer) ScheduleAfter(delay time.Duration, fn func()) (string, error) {
	if fn == nil {
		return "", fmt.Errorf("ManualTimer.ScheduleAfter: nil callback")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("manual_%d", m.nextID)
	m.entries[id] = &manualEntry{id: id, seq: m.nextID, due: m.now.Add(max(delay, 0)), fn: fn}
	return id, nil
}

// Cancel removes a scheduled callback.
func (m *ManualTimer) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Stop removes every scheduled callback.
func (m *ManualTimer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*manualEntry)
}

// Advance moves the clock forward by d, running every callback that falls due,
// including ones scheduled by callbacks during the advance. The clock reads
// each callback's due time while it runs.
func (m *ManualTimer) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		delete(m.entries, next.id)
		m.now = next.due
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of callbacks still scheduled.
func (m *ManualTimer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Deadlines returns the due times of scheduled callbacks, soonest first.
func (m *ManualTimer) Deadlines() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Time, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.due)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (m *ManualTimer) nextDue(limit time.Time) *manualEntry {
	var next *manualEntry
	for _, e := range m.entries {
		if e.due.After(limit) {
			continue
		}
		if next == nil || e.due.Before(next.due) || (e.due.Equal(next.due) && e.seq < next.seq) {
			next = e
		}
	}
	return next
}
