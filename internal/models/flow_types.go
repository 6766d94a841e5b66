// Package models defines flow type definitions to avoid circular imports.
package models

// FieldKey identifies one question in the collection script.
type FieldKey string

// StateType represents the conversation mode of a cancellation flow.
type StateType string

// Canonical field keys. These appear in the summary and can be corrected.
const (
	FieldAccountName     FieldKey = "account-name"
	FieldServiceType     FieldKey = "service-type"
	FieldReason          FieldKey = "reason"
	FieldDate            FieldKey = "date"
	FieldEquipmentStatus FieldKey = "equipment-status"
	FieldContactMethod   FieldKey = "contact-method"
)

// Screening field keys. Captured like other fields but never summarized.
const (
	FieldHumanCheck  FieldKey = "human-check"
	FieldTreaty      FieldKey = "treaty"
	FieldPledge      FieldKey = "pledge"
	FieldTimedPledge FieldKey = "timed-pledge"
	FieldLightPledge FieldKey = "light-pledge"
)

// CanonicalFields lists the summarized fields in script order.
var CanonicalFields = []FieldKey{
	FieldAccountName,
	FieldServiceType,
	FieldReason,
	FieldDate,
	FieldEquipmentStatus,
	FieldContactMethod,
}

// IsCanonicalField reports whether key is one of the summarized fields.
func IsCanonicalField(key FieldKey) bool {
	for _, k := range CanonicalFields {
		if k == key {
			return true
		}
	}
	return false
}

// Conversation states.
const (
	StateCollecting       StateType = "collecting"
	StateReasonConfirm    StateType = "reason-confirm"
	StateConfirmSummary   StateType = "confirm-summary"
	StateCorrectionSelect StateType = "correction-select"
	StateCorrectionInput  StateType = "correction-input"
	StatePongPending      StateType = "pong-pending"
	StatePong             StateType = "pong"
	StateCompleted        StateType = "completed"
)
