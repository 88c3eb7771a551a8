// Package ioerr defines the two asset-loader error sentinels shared across
// every subsystem's loader boundary (spec.md 7): a missing asset and a
// malformed one. Every loader wraps one of these with %w so callers can
// errors.Is against the sentinel while still seeing the failing path.
package ioerr

import "errors"

var (
	// Missing reports an asset that could not be found or opened.
	Missing = errors.New("asset missing")
	// Malformed reports an asset that failed a schema or sanity check.
	Malformed = errors.New("asset malformed")
)
