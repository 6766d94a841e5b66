// Package challenge gates script steps behind proof that a reply was typed by
// hand: an exact phrase, optionally within a time limit, optionally only while
// a cycling light is green.
package challenge

import (
	"time"

	"github.com/BTreeMap/CancelPipe/internal/models"
)

// Kind selects the validation rules of a challenge.
type Kind string

const (
	// KindExactPhrase accepts the configured phrase, character for character.
	KindExactPhrase Kind = "exact-phrase"
	// KindTimedPhrase additionally requires the reply within TimeLimit.
	KindTimedPhrase Kind = "timed-phrase"
	// KindTrafficLight additionally requires the light to be green.
	KindTrafficLight Kind = "traffic-light"
)

// Light is the traffic-light signal of an active challenge.
type Light string

const (
	LightNone  Light = "none"
	LightGreen Light = "green"
	LightRed   Light = "red"
)

// Default rejection messages, used when a Config leaves them empty.
const (
	DefaultExpiredText  = "Too slow! That took longer than the time limit. The clock has been reset."
	DefaultRedLightText = "Red light! You have to wait for green before sending it."
	DefaultPasteText    = "That looks pasted. Please type it out yourself, one key at a time."
	ResettingText       = "Hold on, I'm resetting that challenge. Try again in a moment."
)

// Config describes one challenge. It is static and attached to a script step.
type Config struct {
	Kind          Kind
	Phrase        string
	TimeLimit     time.Duration
	CycleDuration time.Duration
	ExpiredText   string
	RedLightText  string
	PasteText     string
}

// Timed reports whether replies are subject to a deadline.
func (c Config) Timed() bool {
	return c.Kind != KindExactPhrase && c.TimeLimit > 0
}

// Cycles reports whether the challenge runs a traffic light.
func (c Config) Cycles() bool {
	return c.Kind == KindTrafficLight && c.CycleDuration > 0
}

func (c Config) expiredText() string  { return orDefault(c.ExpiredText, DefaultExpiredText) }
func (c Config) redLightText() string { return orDefault(c.RedLightText, DefaultRedLightText) }
func (c Config) pasteText() string    { return orDefault(c.PasteText, DefaultPasteText) }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Reason explains a rejected submission.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonPaste    Reason = "paste"
	ReasonExpired  Reason = "expired"
	ReasonRedLight Reason = "red-light"
	ReasonMismatch Reason = "mismatch"
	// ReasonInactive means no instance is live for the field, usually because a
	// re-arm is still pending.
	ReasonInactive Reason = "inactive"
)

// Verdict is the outcome of evaluating one submission.
type Verdict struct {
	Passed bool
	Reason Reason
	// Message is the configured rejection text; empty for mismatches, which
	// the caller answers with the step's own retry text.
	Message string
}

// PasteEvent records that the input was last edited by a paste while the
// given instance was active.
type PasteEvent struct {
	InstanceID string
	Field      models.FieldKey
	Handled    bool
	At         time.Time
}

// Status is a point-in-time view of the engine for renderers.
type Status struct {
	Active     bool
	Pending    bool
	InstanceID string
	Field      models.FieldKey
	Kind       Kind
	Phrase     string
	Light      Light
	Timed      bool
	TimeLimit  time.Duration
	Remaining  time.Duration
}

// Listener receives status updates on countdown ticks, light flips and
// lifecycle changes. It is called without engine locks held.
type Listener func(Status)
