package loader

import (
	"errors"
	"os"

	"github.com/xh3b4sd/tracer"
)

func IsProcessAlreadyFinished(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}

var executionFailedError = &tracer.Error{
	Kind: "executionFailedError",
}

func IsExecutionFailed(err error) bool {
	return errors.Is(err, executionFailedError)
}

var modelNotFoundError = &tracer.Error{
	Kind: "modelNotFoundError",
}

func IsModelNotFound(err error) bool {
	return errors.Is(err, modelNotFoundError)
}
