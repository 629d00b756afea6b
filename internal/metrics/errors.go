package metrics

import "errors"

// Typed failure kinds surfaced by the strict entry points. Wrapped causes
// are attached with fmt.Errorf("...: %w", ...) so callers can match with
// errors.Is and still see the specifics.
var (
	// ErrDimensionMismatch: the two inputs differ in width or height.
	ErrDimensionMismatch = errors.New("images must have the same size")
	// ErrChannelMismatch: grayscale vs RGB comparison was requested.
	ErrChannelMismatch = errors.New("grayscale vs RGB comparison not supported")
	// ErrConversionFailure: a packed input could not be converted to planar form.
	ErrConversionFailure = errors.New("packed image conversion failed")
	// ErrTransformFailure: an input could not be brought to the canonical encoding.
	ErrTransformFailure = errors.New("color transform failed")
	// ErrComparatorFailure: the perceptual model failed on valid-looking input.
	ErrComparatorFailure = errors.New("comparator failed")
)
