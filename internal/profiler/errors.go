package profiler

import "errors"

// Failures of the analysis core. All of them abort the run; callers test for
// them with errors.Is since the returned errors carry line or index context.
var (
	// ErrFileNotFound is returned when an input export does not exist.
	ErrFileNotFound = errors.New("profiler file not found")

	// ErrMalformedReferenceFile is returned when a profile export lacks a
	// required section, has short rows, or holds unparseable numbers.
	ErrMalformedReferenceFile = errors.New("malformed reference file")

	// ErrMalformedMovieFile is returned when a movie export lacks the frame
	// table marker or a frame row is short or unparseable.
	ErrMalformedMovieFile = errors.New("malformed movie file")

	// ErrFrameIndexOutOfRange is returned when a requested frame row does not exist.
	ErrFrameIndexOutOfRange = errors.New("frame index out of range")

	// ErrInvalidModality is returned for any modality other than PHOTON or ELECTRON.
	ErrInvalidModality = errors.New("modality has not been correctly defined; valid options are PHOTON or ELECTRON")

	// ErrInvalidProfileShape is returned when a profile cannot be inverted at
	// the CAX dose level or does not cover the analysis window.
	ErrInvalidProfileShape = errors.New("invalid profile shape")

	// ErrDivisionByZero is returned when a reference dose inside the analysis
	// window is zero, or a percentage error is otherwise non-finite.
	ErrDivisionByZero = errors.New("zero reference dose in analysis window")
)
