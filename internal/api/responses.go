package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "coursehub/backend/internal/errors"
)

// This file contains shared DTOs (Data Transfer Objects) for API responses
// and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse defines a generic success response, typically for operations
// like POST, PUT, DELETE that don't need to return a full resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// errorStatus maps business-layer errors to an HTTP status code and a message
// that is safe to show to the student.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		return http.StatusNotFound, "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		// Validation messages from the service layer are written for the user.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		// So are conflicts: "no changes detected", "follow-up limit reached".
		return http.StatusConflict, err.Error()
	case errors.Is(err, app_errors.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, app_errors.ErrUnavailable):
		return http.StatusBadGateway, app_errors.ErrUnavailable.Error()
	case errors.Is(err, app_errors.ErrPersistence):
		return http.StatusInternalServerError, "Your draft could not be saved. Please try again."
	default:
		// Any unhandled error is considered an internal server error.
		// This prevents leaking implementation details to the client.
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

// respondWithError is the centralized error handling function for the API layer.
// It maps custom business-layer errors to appropriate HTTP status codes and formats
// a standard JSON error response.
func respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := errorStatus(err)

	// The original, more detailed error is logged for debugging purposes,
	// while a generic message is sent to the client.
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// sendStreamError sends a structured error message over a Server-Sent Events (SSE) stream.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)
	errorPayload := ErrorResponse{Error: message}

	jsonData, err := json.Marshal(errorPayload)
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return
	}

	// The `event: error` line allows clients to add a specific event listener
	// for errors, e.g., `eventSource.addEventListener('error', ...)`.
	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
		return
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeStreamEvent is a generic helper to marshal data and write it to an SSE stream.
// It returns an error on write failure, which is a signal that the client has disconnected.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// eventStream writes SSE frames, sending the stream headers with the first
// frame. Until then a failure can still be answered with a plain JSON error.
type eventStream struct {
	w       http.ResponseWriter
	started bool
	gone    bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	return &eventStream{w: w}
}

func (s *eventStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

func (s *eventStream) send(data interface{}) {
	s.start()
	if s.gone {
		return
	}
	if err := writeStreamEvent(s.w, data); err != nil {
		s.gone = true
		slog.Debug("Client left the stream.", "error", err)
	}
}

// raw writes a literal data line such as the [DONE] sentinel.
func (s *eventStream) raw(data string) {
	s.start()
	if s.gone {
		return
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.gone = true
		return
	}
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (s *eventStream) fail(err error) {
	if !s.started {
		respondWithError(s.w, err)
		return
	}
	_, message := errorStatus(err)
	slog.Warn("Stream failed", "client_message", message, "internal_error", err)
	if !s.gone {
		sendStreamError(s.w, message)
	}
}
