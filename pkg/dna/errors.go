package dna

import (
	"errors"
	"fmt"
)

// Container errors. Match them with errors.Is.
var (
	ErrSignatureMismatch = errors.New("dna: signature mismatch")
	ErrVersionMismatch   = errors.New("dna: version mismatch")
	ErrInvalidData       = errors.New("dna: invalid data")
	ErrLODOutOfRange     = errors.New("dna: requested LODs out of range")
)

// SignatureMismatchError reports an unexpected container signature.
type SignatureMismatchError struct {
	Expected [3]byte
	Actual   [3]byte
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("dna: signature mismatch: expected %q, got %q", e.Expected[:], e.Actual[:])
}

// Is matches ErrSignatureMismatch.
func (e *SignatureMismatchError) Is(target error) bool {
	return target == ErrSignatureMismatch
}

// VersionMismatchError reports an unsupported container version.
type VersionMismatchError struct {
	Expected Version
	Actual   Version
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("dna: version mismatch: expected %s (supported %s..%s), got %s",
		e.Expected, Version21, CurrentVersion, e.Actual)
}

// Is matches ErrVersionMismatch.
func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}

// invalidData wraps ErrInvalidData with context.
func invalidData(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}
