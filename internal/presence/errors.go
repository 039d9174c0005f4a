package presence

import "errors"

// Code identifies a scan validation failure.
type Code string

const (
	CodeMalformedCode        Code = "MalformedCode"
	CodeEmployeeNotFound     Code = "EmployeeNotFound"
	CodeDuplicateAction      Code = "DuplicateAction"
	CodeArrivalRequired      Code = "ArrivalRequired"
	CodeOutsidePauseWindow   Code = "OutsidePauseWindow"
	CodePauseStartRequired   Code = "PauseStartRequired"
	CodeTooEarlyForDeparture Code = "TooEarlyForDeparture"
)

// ValidationError reports why a scan was rejected. No state is changed when
// one is returned, and retrying the same scan yields the same result until
// the day's events or the time of day change.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is matches any ValidationError carrying the same code, so the sentinels
// below work with errors.Is.
func (e *ValidationError) Is(target error) bool {
	var ve *ValidationError
	if !errors.As(target, &ve) {
		return false
	}
	return ve.Code == e.Code
}

func newValidation(code Code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

var (
	ErrMalformedCode        = newValidation(CodeMalformedCode, "malformed scan code")
	ErrEmployeeNotFound     = newValidation(CodeEmployeeNotFound, "employee not found")
	ErrDuplicateAction      = newValidation(CodeDuplicateAction, "action already recorded today")
	ErrArrivalRequired      = newValidation(CodeArrivalRequired, "arrival must be recorded first")
	ErrOutsidePauseWindow   = newValidation(CodeOutsidePauseWindow, "pause actions are only allowed between 12:00 and 15:00")
	ErrPauseStartRequired   = newValidation(CodePauseStartRequired, "pause start must be recorded before pause end")
	ErrTooEarlyForDeparture = newValidation(CodeTooEarlyForDeparture, "departure can only be recorded from 18:00")
)

// ErrNotFound is returned when an event id does not exist.
var ErrNotFound = errors.New("presence event not found")

// ErrInvalid wraps rejected manual entries.
var ErrInvalid = errors.New("invalid presence event")
