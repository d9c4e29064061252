package stream

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrStreamUnavailable is returned when a successful response carries no body to read.
	ErrStreamUnavailable = errors.New("stream: response body unavailable")

	// ErrEmptyResponse is returned when a stream ends cleanly without producing any text.
	ErrEmptyResponse = errors.New("stream: no text returned")

	// errMalformedFrame marks a data line whose payload is not (yet) valid JSON.
	// It never leaves this package.
	errMalformedFrame = errors.New("stream: malformed frame")

	// errDone marks the [DONE] sentinel.
	errDone = errors.New("stream: done")
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// RequestFailedError is returned for a non-2xx response, before any stream bytes are consumed.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("stream: request failed with status %d: %s", e.Status, e.Message)
}

// requestFailed builds a RequestFailedError from resp. The message comes from a
// JSON `error` field when present, otherwise from the raw body text.
func requestFailed(resp *http.Response) *RequestFailedError {
	e := &RequestFailedError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("AI request failed (%d)", resp.StatusCode),
	}
	if resp.Body == nil {
		return e
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return e
	}

	text := string(body)
	if gjson.Valid(text) {
		field := gjson.Get(text, "error")
		switch {
		case field.IsObject() && field.Get("message").String() != "":
			e.Message = field.Get("message").String()
			return e
		case field.Exists() && field.String() != "":
			e.Message = field.String()
			return e
		}
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		e.Message = trimmed
	}
	return e
}
