// Package flow runs cancellation conversations: the scripted state machine
// that collects, confirms and corrects fields, and a free-text mode that
// delegates replies to a text generator. Both write to a Transcript through a
// typing scheduler.
package flow

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/BTreeMap/CancelPipe/internal/models"
)

// Transcript is the ordered, append-only message log of one session.
type Transcript struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message. Invalid messages are dropped and logged.
func (t *Transcript) Append(msg models.Message) {
	if err := msg.Validate(); err != nil {
		slog.Warn("Transcript.Append: dropping invalid message", "error", err)
		return
	}
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Message(nil), t.messages...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message and whether there is one.
func (t *Transcript) Last() (models.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return models.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// String renders the log as "Agent: ..." and "You: ..." lines.
func (t *Transcript) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var b strings.Builder
	for i, m := range t.messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.Speaker())
		b.WriteString(": ")
		b.WriteString(m.Text)
	}
	return b.String()
}
