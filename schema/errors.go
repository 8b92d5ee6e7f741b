package schema

import (
	"errors"

	"github.com/xh3b4sd/tracer"
)

var invalidSchemaError = &tracer.Error{
	Kind: "invalidSchemaError",
}

func IsInvalidSchema(err error) bool {
	return errors.Is(err, invalidSchemaError)
}
