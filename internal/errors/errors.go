package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services wrap these with context; the API layer uses `errors.Is()` to map them
// to HTTP responses without knowing where they came from.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource, e.g. requesting
	// feedback again for unchanged text.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrUnavailable signifies that the remote text-generation service could not
	// produce a usable response. The user's text is kept so they can retry.
	// This is typically mapped to a 502 Bad Gateway HTTP status.
	ErrUnavailable = errors.New("feedback unavailable, please try again")

	// ErrRateLimited signifies that the shared daily request allowance is used up.
	// This is typically mapped to a 429 Too Many Requests HTTP status.
	ErrRateLimited = errors.New("daily AI limit reached")

	// ErrPersistence signifies that the draft store rejected a read or write.
	ErrPersistence = errors.New("persistence failure")
)
