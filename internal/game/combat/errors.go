package combat

import (
	"errors"
	"fmt"
)

// Code identifies one class of combat error.
type Code string

const (
	CodePrecisionViolation Code = "precision_violation"
	CodeInsufficientAP     Code = "insufficient_ap"
	CodeOutOfRange         Code = "out_of_range"
	CodeUnknownActor       Code = "unknown_actor"
	CodeAmbiguousTarget    Code = "ambiguous_target"
	CodeIntentParse        Code = "intent_parse_error"
	CodeIllegalTransition  Code = "illegal_transition"
	CodeDuplicateCombatant Code = "duplicate_combatant"
	CodeNoOpposingTeams    Code = "no_opposing_teams"
	CodeValidationFailure  Code = "validation_failure"
	CodeInternalInvariant  Code = "internal_invariant_broken"
)

// Error is a combat error carrying its taxonomy code and causal trace.
type Error struct {
	Code    Code
	Trace   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError builds an Error with a formatted message.
//
// Precondition: code must be one of the declared Code constants.
func NewError(code Code, trace, format string, args ...any) *Error {
	return &Error{Code: code, Trace: trace, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the taxonomy code from err, or "" when err is not a combat Error.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
