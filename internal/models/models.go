// Package models defines the core data structures for CancelPipe.
//
// It includes the transcript message shape exchanged with renderers and the
// enumerations shared by the script, challenge and flow packages.
package models

import (
	"errors"
	"fmt"
)

// Role identifies who authored a transcript message.
type Role string

const (
	// RoleAgent marks messages produced by the cancellation assistant.
	RoleAgent Role = "agent"
	// RoleUser marks messages typed by the person cancelling.
	RoleUser Role = "user"
)

// Error variables for message validation
var (
	ErrInvalidRole  = errors.New("invalid message role")
	ErrEmptyMessage = errors.New("message text cannot be empty")
)

// IsValidRole checks if the given role is supported.
func IsValidRole(r Role) bool {
	switch r {
	case RoleAgent, RoleUser:
		return true
	default:
		return false
	}
}

// Message is a single transcript entry. It is immutable once appended.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// AgentMessage builds an agent-authored message.
func AgentMessage(text string) Message {
	return Message{Role: RoleAgent, Text: text}
}

// UserMessage builds a user-authored message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// Validate checks that the message has a known role and non-empty text.
func (m Message) Validate() error {
	if !IsValidRole(m.Role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
	}
	if m.Text == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Speaker returns the display name used when a transcript is rendered as text.
func (m Message) Speaker() string {
	if m.Role == RoleAgent {
		return "Agent"
	}
	return "You"
}
