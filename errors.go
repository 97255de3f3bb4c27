package fincalc

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every validation error of the models.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError rejects a projection input.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// Message is the text shown to the user.
func (e *InvalidInputError) Message() string {
	return "Please enter valid positive values."
}

// InvalidRevenueError rejects a valuation whose revenue is not positive.
type InvalidRevenueError struct {
	Revenue Money
}

func (e *InvalidRevenueError) Error() string {
	return fmt.Sprintf("invalid revenue %s: must be positive", e.Revenue.Decimal())
}

func (e *InvalidRevenueError) Is(target error) bool { return target == ErrInvalidInput }

func (e *InvalidRevenueError) Message() string {
	return "Please enter a valid positive revenue number (for example: 5000000)."
}

// UserMessage returns the user facing text of a validation error, or err's
// own text for anything else.
func UserMessage(err error) string {
	var m interface{ Message() string }
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}
