package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz identifier does not resolve.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCellUsed is returned when selecting a cell that has already been resolved.
	ErrCellUsed = errors.New("cell already used")
	// ErrCellNotFound is returned when a selection names a cell outside the grid.
	ErrCellNotFound = errors.New("cell not found")
	// ErrNoSelection is returned for question/answer operations with no open cell.
	ErrNoSelection = errors.New("no cell selected")
	// ErrWrongPhase is returned when an action is not valid in the current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrTeamOutOfRange is returned for judge marks outside the team slots.
	ErrTeamOutOfRange = errors.New("team index out of range")
)

// ValidationError carries a human-readable, client-correctable message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError from a message.
func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
