package attendance

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation errors are recoverable and leave the store
// untouched; store errors wrap the driver error.
var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidName   = fmt.Errorf("%w: invalid student name", ErrValidation)
	ErrInvalidDate   = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidStatus = fmt.Errorf("%w: invalid attendance status", ErrValidation)

	ErrStore = errors.New("store operation failed")
)

// Message returns the user-facing sentence for a validation error, or the
// error text for anything else.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return "Invalid student name. Only alphabetic characters and spaces are allowed."
	case errors.Is(err, ErrInvalidDate):
		return "Invalid date format. Use YYYY-MM-DD."
	case errors.Is(err, ErrInvalidStatus):
		return "Invalid attendance status. Use 'Present' or 'Absent'."
	default:
		return err.Error()
	}
}
