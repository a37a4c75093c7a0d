package image

import "errors"

// Error kinds reported by pixel map operations. Callers match them with errors.Is.
var (
	// ErrInvalidParameter is returned for nil buffers, non-positive sizes and malformed rectangles.
	ErrInvalidParameter = errors.New("pixelmap: invalid parameter")

	// ErrUnsupportedFormat is returned when a format is unknown or incompatible with the operation.
	ErrUnsupportedFormat = errors.New("pixelmap: unsupported format")

	// ErrTooLarge is returned when a size would exceed MaxRAMSize or overflow.
	ErrTooLarge = errors.New("pixelmap: size exceeds memory limit")

	// ErrAllocationFailed is returned when backing storage could not be obtained.
	ErrAllocationFailed = errors.New("pixelmap: allocation failed")

	// ErrNotAllowedToModify is returned when writing a non-editable pixel map.
	ErrNotAllowedToModify = errors.New("pixelmap: not allowed to modify")

	// ErrMatrixNotInvertible is returned for degenerate geometric transforms.
	ErrMatrixNotInvertible = errors.New("pixelmap: matrix not invertible")

	// ErrCrop is returned when a crop rectangle lies outside the source.
	ErrCrop = errors.New("pixelmap: invalid crop rectangle")

	// ErrIO is returned when a file descriptor, mapping or socket operation fails.
	ErrIO = errors.New("pixelmap: i/o failure")

	// ErrMismatchedFormat is returned when serialized data fails its integrity checks.
	ErrMismatchedFormat = errors.New("pixelmap: mismatched format")
)
