// Package timer provides cancellable one-shot timers keyed by string ids.
//
// Every delayed action in a conversation (typing delays, challenge re-arms,
// countdown ticks, light flips, the minigame start) goes through a Timer so
// that it can be cancelled by id and so tests can drive time explicitly with
// ManualTimer.
package timer

import (
	"errors"
	"time"
)

// ErrTimerNotFound is returned when a timer id is unknown or has already fired.
var ErrTimerNotFound = errors.New("timer not found")

// Timer schedules callbacks after a delay.
type Timer interface {
	// Now returns the timer's current time.
	Now() time.Time
	// ScheduleAfter runs fn once after delay and returns an id for cancellation.
	ScheduleAfter(delay time.Duration, fn func()) (string, error)
	// Cancel stops a scheduled callback. Cancelling an unknown id is a no-op.
	Cancel(id string) error
	// Stop cancels every scheduled callback.
	Stop()
}

// Info describes a scheduled callback.
type Info struct {
	ID          string
	ScheduledAt time.Time
	ExpiresAt   time.Time
	Remaining   time.Duration
}
