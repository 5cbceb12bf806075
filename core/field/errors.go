package field

import (
	"errors"
	"fmt"
)

// errUnknownField marks dynamic access to an attribute the schema does not
// declare.
var errUnknownField = errors.New("unknown field")

// ConvertError reports a value that could not be coerced by a field kind.
// It always names the schema type and field so a decode failure reads as
// "text.id", not a generic parse error.
type ConvertError struct {
	Schema string
	Field  string
	Value  any
	Err    error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("field: %s.%s: cannot convert %v: %v", e.Schema, e.Field, e.Value, e.Err)
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

// LimitError reports a bounded collection exceeding its cap. Raised at the
// point of mutation, never deferred to render time, and never silently
// truncated.
type LimitError struct {
	What  string
	Limit int
	Got   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("field: %s holds at most %d items, got %d", e.What, e.Limit, e.Got)
}
