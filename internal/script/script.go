// Package script defines the fixed question sequence of a cancellation
// conversation: one Step per field, each bundling its prompt, extractor,
// display formatter and optional challenge.
package script

import (
	"strings"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/extract"
	"github.com/BTreeMap/CancelPipe/internal/models"
)

// Step is one question in the script. Steps are immutable once built.
type Step struct {
	Key         models.FieldKey
	Label       string
	Prompt      string
	RetryText   string
	Guidance    string
	Extract     extract.Extractor
	Format      extract.Formatter
	Acknowledge func(value string) string
	Challenge   *challenge.Config
	// Aliases are the words a user may use to refer to this field when
	// asking for a correction. Only summarized steps have them.
	Aliases []string
	// PolarValues marks fields whose valid answers include plain yes/no.
	PolarValues bool
	Summarized  bool
}

// Capture runs the extractor and formats the result for display.
func (s Step) Capture(raw string) (string, bool) {
	candidate, ok := s.Extract(raw)
	if !ok {
		return "", false
	}
	return s.Format(candidate), true
}

// Retry is the message sent when a reply could not be parsed: the retry text
// followed by guidance, when the step has any.
func (s Step) Retry() string {
	if s.Guidance == "" {
		return s.RetryText
	}
	return s.RetryText + " " + s.Guidance
}

// Gated reports whether replies to this step must pass a challenge.
func (s Step) Gated() bool {
	return s.Challenge != nil
}

// Timing holds the challenge limits applied to the screening pledges.
type Timing struct {
	TimedLimit time.Duration
	LightLimit time.Duration
	LightCycle time.Duration
}

// DefaultTiming returns the stock pledge limits.
func DefaultTiming() Timing {
	return Timing{
		TimedLimit: 10 * time.Second,
		LightLimit: 20 * time.Second,
		LightCycle: 1500 * time.Millisecond,
	}
}

type options struct {
	screening bool
	timing    Timing
}

// Option configures a Script.
type Option func(*options)

// WithScreening adds the human check, treaty renunciation and the three
// challenge pledges to the script.
func WithScreening() Option {
	return func(o *options) { o.screening = true }
}

// WithTiming overrides the pledge challenge limits.
func WithTiming(t Timing) Option {
	return func(o *options) { o.timing = t }
}

// Script is the ordered, immutable step table.
type Script struct {
	steps    []Step
	index    map[models.FieldKey]int
	patterns []aliasPattern
}

// New builds the script. now anchors relative dates such as "tomorrow".
func New(now func() time.Time, opts ...Option) *Script {
	o := options{timing: DefaultTiming()}
	for _, opt := range opts {
		opt(&o)
	}

	steps := []Step{nameStep(), serviceStep(), reasonStep(), dateStep(now), equipmentStep(), contactStep()}
	if o.screening {
		steps = []Step{
			nameStep(),
			humanCheckStep(),
			serviceStep(),
			reasonStep(),
			treatyStep(),
			dateStep(now),
			equipmentStep(),
			pledgeStep(),
			timedPledgeStep(o.timing),
			lightPledgeStep(o.timing),
			contactStep(),
		}
	}

	s := &Script{steps: steps, index: make(map[models.FieldKey]int, len(steps))}
	for i, st := range steps {
		s.index[st.Key] = i
	}
	s.patterns = s.aliasPatterns()
	return s
}

// Len returns the number of steps.
func (s *Script) Len() int { return len(s.steps) }

// Step returns the step at index i.
func (s *Script) Step(i int) Step { return s.steps[i] }

// Steps returns a copy of the step table.
func (s *Script) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// IndexOf returns the position of key, or -1.
func (s *Script) IndexOf(key models.FieldKey) int {
	if i, ok := s.index[key]; ok {
		return i
	}
	return -1
}

// Lookup returns the step for key.
func (s *Script) Lookup(key models.FieldKey) (Step, bool) {
	i, ok := s.index[key]
	if !ok {
		return Step{}, false
	}
	return s.steps[i], true
}

// NextUncaptured returns the first index at or after from whose field is not
// in captured, or Len() when every remaining field is captured.
func (s *Script) NextUncaptured(from int, captured map[models.FieldKey]string) int {
	for i := max(from, 0); i < len(s.steps); i++ {
		if _, ok := captured[s.steps[i].Key]; !ok {
			return i
		}
	}
	return len(s.steps)
}

// Summarized returns the steps shown in the summary, in order.
func (s *Script) Summarized() []Step {
	var out []Step
	for _, st := range s.steps {
		if st.Summarized {
			out = append(out, st)
		}
	}
	return out
}

// lowerLabel is the label as it reads mid-sentence.
func lowerLabel(label string) string {
	return strings.ToLower(label)
}
