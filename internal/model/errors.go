package model

import "github.com/rotisserie/eris"

// Sentinel errors for the two caller-visible failure classes. Upstream
// provider failures are absorbed at the provider boundary and never surface
// through these.
var (
	// ErrNotFound marks an absent deal, document, or assumption set.
	ErrNotFound = eris.New("not found")

	// ErrValidation marks invalid caller input (missing model fields,
	// zero cap rate, malformed request).
	ErrValidation = eris.New("validation failed")
)

// NotFoundf builds a not-found error with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return eris.Wrapf(ErrNotFound, format, args...)
}

// Validationf builds a validation error with a formatted detail message.
func Validationf(format string, args ...any) error {
	return eris.Wrapf(ErrValidation, format, args...)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return eris.Is(err, ErrNotFound)
}

// IsValidation reports whether err is (or wraps) ErrValidation.
func IsValidation(err error) bool {
	return eris.Is(err, ErrValidation)
}
