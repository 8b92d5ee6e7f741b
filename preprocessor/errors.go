package preprocessor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xh3b4sd/tracer"
)

var invalidConfigError = &tracer.Error{
	Kind: "invalidConfigError",
}

func IsInvalidConfig(err error) bool {
	return errors.Is(err, invalidConfigError)
}

var missingColumnsError = &tracer.Error{
	Kind: "missingColumnsError",
	Desc: "The input batch lacks at least one column required by the fitted column roles.",
}

// IsMissingColumns reports a MissingColumnsError, also after the error was
// masked by callers. tracer.Error does not unwrap, so the check runs against
// the masked cause.
func IsMissingColumns(err error) bool {
	return errors.Is(tracer.Cause(err), missingColumnsError)
}

var emptyResultError = &tracer.Error{
	Kind: "emptyResultError",
	Desc: "No row survived validity filtering.",
}

// IsEmptyResult reports an EmptyResultError, masked or not.
func IsEmptyResult(err error) bool {
	return errors.Is(tracer.Cause(err), emptyResultError)
}

var unfittedStateError = &tracer.Error{
	Kind: "unfittedStateError",
	Desc: "Transform was called before Fit.",
}

// IsUnfittedState reports an UnfittedStateError, masked or not.
func IsUnfittedState(err error) bool {
	return errors.Is(tracer.Cause(err), unfittedStateError)
}

// The typed errors below are returned unmasked so that errors.As reaches
// their fields.

// MissingColumnsError names the required columns absent from a batch. Stage
// is "fit" or "input" when the configured columns are checked before any
// work, and "filtered" when the fitted role columns are checked after
// imputation and validity filtering.
type MissingColumnsError struct {
	Stage   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns in %s data: %s", e.Stage, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return missingColumnsError
}

// EmptyResultError carries the row counts around the filter step that left
// nothing behind.
type EmptyResultError struct {
	Stage  string
	Before int
	After  int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no samples left after filtering %s data by valid values (%d rows before, %d after)", e.Stage, e.Before, e.After)
}

func (e *EmptyResultError) Unwrap() error {
	return emptyResultError
}

// UnfittedStateError is returned by every operation that needs fitted state.
type UnfittedStateError struct {
	Op string
}

func (e *UnfittedStateError) Error() string {
	return fmt.Sprintf("preprocessor must be fitted before %s", e.Op)
}

func (e *UnfittedStateError) Unwrap() error {
	return unfittedStateError
}
