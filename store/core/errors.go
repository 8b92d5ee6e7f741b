package core

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidKeyError = &tracer.Error{
	Kind: "invalidKeyError",
}

func IsInvalidKey(err error) bool {
	return errors.Is(err, invalidKeyError)
}

// NotFoundError is shared by all drivers, so that callers can check any
// store with IsNotFound.
var NotFoundError = &tracer.Error{
	Kind: "notFoundError",
}

func IsNotFound(err error) bool {
	return errors.Is(err, NotFoundError)
}
