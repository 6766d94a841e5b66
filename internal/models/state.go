// Package models defines state management structures for CancelPipe flows.
package models

// StateTransition represents a transition between states in a flow.
type StateTransition struct {
	FromState StateType `json:"from_state"`
	ToState   StateType `json:"to_state"`
}

// allowedTransitions lists every mode change the cancellation flow may make.
// Staying in the same state is always allowed and is not listed.
var allowedTransitions = map[StateTransition]bool{
	{StateCollecting, StateReasonConfirm}:         true,
	{StateCollecting, StateConfirmSummary}:        true,
	{StateReasonConfirm, StateCollecting}:         true,
	{StateReasonConfirm, StateConfirmSummary}:     true,
	{StateConfirmSummary, StatePongPending}:       true,
	{StateConfirmSummary, StateCorrectionSelect}:  true,
	{StateConfirmSummary, StateCorrectionInput}:   true,
	{StateConfirmSummary, StateReasonConfirm}:     true,
	{StateCorrectionSelect, StateConfirmSummary}:  true,
	{StateCorrectionSelect, StateCorrectionInput}: true,
	{StateCorrectionSelect, StateReasonConfirm}:   true,
	{StateCorrectionInput, StateConfirmSummary}:   true,
	{StateCorrectionInput, StateReasonConfirm}:    true,
	{StatePongPending, StatePong}:                 true,
	{StatePong, StateCollecting}:                  true,
	{StatePong, StateCompleted}:                   true,
}

// IsValidTransition reports whether the flow may move from one state to another.
func IsValidTransition(from, to StateType) bool {
	if from == to {
		return true
	}
	return allowedTransitions[StateTransition{FromState: from, ToState: to}]
}

// IsTerminal reports whether no further input can change the state.
func IsTerminal(s StateType) bool {
	return s == StateCompleted
}
