// Package apperr defines the error taxonomy shared by the retrieval engine and its collaborators.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w", Err...).
package apperr

import "errors"

var (
	// ErrInvalidConfiguration reports a bad construction-time setting (chunk size, dimensions).
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidArgument reports a bad per-call argument such as top_k <= 0.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch reports a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrExtractionFailed is returned by document extractors and propagated unchanged.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrGenerationUnavailable means no answer generator is configured or it could not answer.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrNotFound reports a missing catalog record.
	ErrNotFound = errors.New("not found")
)

// IsInvalid reports whether err is a caller bug: bad configuration, bad argument or dimension mismatch.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrDimensionMismatch)
}

// IsExtractionFailed reports whether err came from text extraction.
func IsExtractionFailed(err error) bool {
	return errors.Is(err, ErrExtractionFailed)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
