package encoder

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidShapeError = &tracer.Error{
	Kind: "invalidShapeError",
}

func IsInvalidShape(err error) bool {
	return errors.Is(err, invalidShapeError)
}

var notFittedError = &tracer.Error{
	Kind: "notFittedError",
}

func IsNotFitted(err error) bool {
	return errors.Is(err, notFittedError)
}
