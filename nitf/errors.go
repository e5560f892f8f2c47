package nitf

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps one of them.
var (
	// ErrConfig is a structural problem with the segment description,
	// detected at Open. It is never retried.
	ErrConfig = errors.New("nitf: configuration error")

	// ErrIO is a failed seek or short read of one block
	ErrIO = errors.New("nitf: i/o error")

	// ErrFormat is an inconsistency in the stored data, detected on first
	// access to the failing feature
	ErrFormat = errors.New("nitf: format error")
)

var (
	ErrUnknownReadMode = fmt.Errorf("%w: unknown read mode", ErrConfig)
	ErrBandMismatch    = fmt.Errorf("%w: band count mismatch", ErrConfig)
	ErrMissingTable    = fmt.Errorf("%w: missing lookup table", ErrConfig)
	ErrInvalidGeometry = fmt.Errorf("%w: invalid block geometry", ErrConfig)

	ErrShortRead = fmt.Errorf("%w: short read", ErrIO)

	ErrBlockScan   = fmt.Errorf("%w: jpeg block scan", ErrFormat)
	ErrBlockDecode = fmt.Errorf("%w: block decode", ErrFormat)

	ErrClosed = errors.New("nitf: segment closed")
)
