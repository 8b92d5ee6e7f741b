package batch

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidInputError = &tracer.Error{
	Kind: "invalidInputError",
}

// IsInvalidInput reports malformed batches, e.g. columns of unequal length or
// duplicated column names.
func IsInvalidInput(err error) bool {
	return errors.Is(err, invalidInputError)
}

var invalidTypeError = &tracer.Error{
	Kind: "invalidTypeError",
}

// IsInvalidType reports values that cannot be represented in the requested
// column kind, e.g. "abc" in a numeric column.
func IsInvalidType(err error) bool {
	return errors.Is(err, invalidTypeError)
}
