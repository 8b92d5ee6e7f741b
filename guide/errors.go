package guide

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidConfigError = &tracer.Error{
	Kind: "invalidConfigError",
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, invalidConfigError)
}

var unknownValueError = &tracer.Error{
	Kind: "unknownValueError",
}

func IsUnknownValue(err error) bool {
	return errors.Is(err, unknownValueError)
}
