package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Enrichment unavailability is deliberately NOT here: the
// gateway reports it as a tagged outcome and each stage recovers locally,
// so it never surfaces to a caller as an error.

// ErrNotFound marks unknown bundle ids (and other keyed lookups that miss).
// Unknown regions are not a not-found condition: the resolver produces a
// defined neutral profile instead.
var ErrNotFound = errors.New("not found")

// ValidationError rejects caller input outside the fixed allowed sets or
// override values outside [0,100].
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a caller-input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
