// Package picker holds the error taxonomy shared by the randomized selection
// tools. Subpackages wrap these sentinels with context; callers match them with
// errors.Is.
package picker

import "errors"

var (
	// ErrValidation reports malformed or out-of-range user input. The rejected
	// mutation leaves prior state unchanged.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports a lookup by candidate ID that matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrEmptyPool reports that every candidate was filtered out, so no
	// selection can start.
	ErrEmptyPool = errors.New("effective pool is empty")

	// ErrInvalidState reports an operation requested in the wrong phase, such as
	// a second spin or a candidate edit while an animation is running.
	ErrInvalidState = errors.New("invalid state")
)
