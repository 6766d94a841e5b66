package models

import (
	"errors"
	"testing"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{"agent message", AgentMessage("hello"), nil},
		{"user message", UserMessage("hi"), nil},
		{"empty text", AgentMessage(""), ErrEmptyMessage},
		{"unknown role", Message{Role: "system", Text: "x"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageSpeaker(t *testing.T) {
	if got := AgentMessage("x").Speaker(); got != "Agent" {
		t.Errorf("agent speaker = %q", got)
	}
	if got := UserMessage("x").Speaker(); got != "You" {
		t.Errorf("user speaker = %q", got)
	}
}

func TestIsValidTransition(t *testing.T) {
	if !IsValidTransition(StateCollecting, StateCollecting) {
		t.Error("self transition should be allowed")
	}
	if !IsValidTransition(StatePong, StateCollecting) {
		t.Error("pong loss should return to collecting")
	}
	if IsValidTransition(StateCompleted, StateCollecting) {
		t.Error("completed must be terminal")
	}
	if IsValidTransition(StateCollecting, StatePong) {
		t.Error("collecting cannot jump straight to pong")
	}
}

func TestIsCanonicalField(t *testing.T) {
	for _, k := range CanonicalFields {
		if !IsCanonicalField(k) {
			t.Errorf("%s should be canonical", k)
		}
	}
	if IsCanonicalField(FieldTreaty) {
		t.Error("treaty is a screening field")
	}
}
