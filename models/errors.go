package models

import (
	"errors"
	"fmt"
)

// ErrVersionMismatch is matched by every *VersionError.
var ErrVersionMismatch = errors.New("incompatible version")

// VersionError reports a scan or analysis whose format tag is not the one
// this build understands.
type VersionError struct {
	Kind string // "scan" or "analysis"
	Got  string
	Want string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: %s version %q, want %q", ErrVersionMismatch, e.Kind, e.Got, e.Want)
}

func (e *VersionError) Is(target error) bool {
	return target == ErrVersionMismatch
}
