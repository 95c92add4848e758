package bmp

import "errors"

var (
	// The bitmap file is missing, locked or could not be read.
	ErrUnreadableSource = errors.New("unreadable source")

	// Fewer bytes were available than the headers declare.
	ErrTruncatedInput = errors.New("truncated input")

	// Anything but 24-bit uncompressed with a positive width and a non-zero height.
	ErrUnsupportedFormat = errors.New("unsupported BMP format: only 24-bit uncompressed is supported")
)
