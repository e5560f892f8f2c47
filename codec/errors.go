package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a compression code is not known at all
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when a code is combined with settings it cannot decode
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedFormat is returned when the code is known but has no decoder here
	ErrUnsupportedFormat = errors.New("unsupported format")
)
