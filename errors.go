package goForms

import "errors"

var (
	// ErrCSRFTokenMissing is an exported constant or variable used by CSRF validation.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFSessionTokenMissing is an exported constant or variable used by CSRF validation.
	ErrCSRFSessionTokenMissing = errors.New("csrf session token missing")
	// ErrCSRFTokenInvalid is an exported constant or variable used by CSRF validation.
	ErrCSRFTokenInvalid = errors.New("csrf token invalid")
	// ErrCSRFTokenExpired is an exported constant or variable used by CSRF validation.
	ErrCSRFTokenExpired = errors.New("csrf token expired")
	// ErrCSRFFieldMismatch is an exported constant or variable used by CSRF validation.
	ErrCSRFFieldMismatch = errors.New("csrf token field mismatch")
	// ErrCSRFTokensMismatch is an exported constant or variable used by CSRF validation.
	ErrCSRFTokensMismatch = errors.New("csrf tokens do not match")
	// ErrCSRFReferrer is an exported constant or variable used by CSRF protection.
	ErrCSRFReferrer = errors.New("csrf referrer check failed")

	// ErrSecretKeyRequired is returned when CSRF is enabled without any secret key.
	ErrSecretKeyRequired = errors.New("a secret key is required to use CSRF")
	// ErrNoSession is returned when token generation finds no session in the context.
	ErrNoSession = errors.New("no session in request context")
	// ErrInvalidSetting is returned when a setting value cannot be coerced to its type.
	ErrInvalidSetting = errors.New("invalid setting")
	// ErrAppNotReady is returned when a nil or unbuilt App is used.
	ErrAppNotReady = errors.New("app not initialized")
)

// ValidationError is the single failure kind produced by CSRF validation. Message is
// human readable and suitable for a form field's error list; Err is one of the
// ErrCSRF* sentinels.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(err error, message string) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}

// IsValidationError reports whether err is, or wraps, a [ValidationError].
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
