package dom

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel that every InvalidInputError matches with errors.Is.
var ErrInvalidInput = errors.New("invalid mount target")

// InvalidInputError means that a mount target cannot be audited: it is plain text without any
// elements, or it is not an element or markup at all.
type InvalidInputError struct {
	Markup   string
	NoMarkup bool
}

func (e *InvalidInputError) Error() string {
	if e.NoMarkup {
		return "html parameter should be an HTML string or an HTML element"
	}
	return fmt.Sprintf("html parameter (%q) has no elements", e.Markup)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
