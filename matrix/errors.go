package matrix

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
