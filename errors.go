package inpaint

import "errors"

var (
	// ErrEmptyMask is returned when a paint mask has no damaged pixel.
	ErrEmptyMask = errors.New("inpaint: paint mask marks no pixel as damaged")

	// ErrSizeMismatch indicates a tensor and a mask (or two tensors) disagree
	// on dimensions. Operations treat it as a programming error and panic with it.
	ErrSizeMismatch = errors.New("inpaint: size mismatch")

	// ErrTooLarge is returned by SolveDirect when the unknown region exceeds MaxDirectUnknowns.
	ErrTooLarge = errors.New("inpaint: too many unknown pixels for direct solve")

	// ErrSingular is returned by SolveDirect when the linear system has no unique solution.
	ErrSingular = errors.New("inpaint: singular system")

	// ErrInvalidOptions reports out-of-range solver options.
	ErrInvalidOptions = errors.New("inpaint: invalid options")
)
