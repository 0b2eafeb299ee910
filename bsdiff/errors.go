package bsdiff

import "github.com/pkg/errors"

// ErrInvalidParameter is the sentinel wrapped by errors returned from
// NewDiffParams when sort_partitions or scan_chunk_size violate their
// documented constraints (spec.md §7, "Parameter invalid").
var ErrInvalidParameter = errors.New("bsdiff: invalid parameter")

// invalidParameter wraps ErrInvalidParameter with a descriptive
// message, so errors.Is(err, ErrInvalidParameter) still succeeds.
func invalidParameter(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}
