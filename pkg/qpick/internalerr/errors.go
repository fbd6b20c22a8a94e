package internalerr

import "errors"

// Sentinel errors for the error kinds named in the pipeline's error-handling
// design: asset loading, sharder input lines, sharder output, and the
// durable store backend.
var (
	ErrConfigMissing    = errors.New("required external asset missing or corrupt")
	ErrMalformedLine    = errors.New("malformed sharder input line")
	ErrIOWriteFailure   = errors.New("shard output write failure")
	ErrStoreUnavailable = errors.New("store unavailable")
)
