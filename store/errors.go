package store

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var unknownDriverError = &tracer.Error{
	Kind: "unknownDriverError",
}

func IsUnknownDriver(err error) bool {
	return errors.Is(err, unknownDriverError)
}
