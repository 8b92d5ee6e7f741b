package loader

import (
	"os"

	"github.com/xh3b4sd/tracer"
)

// artefact verifies that pat names a regular model file.
func artefact(pat string) error {
	inf, err := os.Stat(pat)
	if os.IsNotExist(err) {
		return tracer.Maskf(modelNotFoundError, "%s", pat)
	} else if err != nil {
		return tracer.Mask(err)
	}

	if inf.IsDir() {
		return tracer.Maskf(modelNotFoundError, "%s is a directory", pat)
	}

	return nil
}
