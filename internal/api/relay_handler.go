package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	app_errors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/interfaces"
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
)

// relayChunk is one frame of the relay's completion-chunk wire format.
type relayChunk struct {
	Choices []relayChoice `json:"choices"`
}

type relayChoice struct {
	Delta relayDelta `json:"delta"`
}

type relayDelta struct {
	Content string `json:"content"`
}

const relaySentinel = "[DONE]"

// RelayHandler serves the metered chat relay.
type RelayHandler struct {
	service interfaces.RelayService
}

func NewRelayHandler(svc interfaces.RelayService) *RelayHandler {
	return &RelayHandler{service: svc}
}

func setUsageHeaders(w http.ResponseWriter, usage *model.Usage) {
	w.Header().Set("X-Usage-Used", strconv.Itoa(usage.RequestCount))
	w.Header().Set("X-Usage-Limit", strconv.Itoa(usage.Limit))
}

// HandleChat godoc
// @Summary      Relay a chat
// @Description  Counts the request against the student's daily allowance, then streams the reply as chat completion chunks ending with "data: [DONE]".
// @Tags         Relay
// @Accept       json
// @Produce      text/event-stream
// @Param        chat  body  service.ChatRequest  true  "Chat"
// @Success      200  {string}  string  "event stream"
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/chat [post]
func (h *RelayHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	usage, err := h.service.Acquire(r.Context(), req.StudentID)
	if usage != nil {
		setUsageHeaders(w, usage)
	}
	if err != nil {
		respondWithError(w, err)
		return
	}

	ch := make(chan llm.StreamResponse)
	errc := make(chan error, 1)
	go func() {
		errc <- h.service.Stream(r.Context(), &req, ch)
	}()

	events := newEventStream(w)
	for chunk := range ch {
		if chunk.Content == "" {
			continue
		}
		events.send(relayChunk{Choices: []relayChoice{{Delta: relayDelta{Content: chunk.Content}}}})
	}

	if err := <-errc; err != nil {
		if !errors.Is(err, app_errors.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", app_errors.ErrUnavailable, err)
		}
		events.fail(err)
		return
	}
	events.raw(relaySentinel)
	slog.Debug("Relay stream finished.", "student_id", usage.StudentID, "used", usage.RequestCount)
}

// HandleUsage godoc
// @Summary      Get today's usage
// @Description  Returns how many relay requests the student made today (UTC) and the daily limit.
// @Tags         Relay
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Success      200  {object}  model.Usage
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/usage/{studentID} [get]
func (h *RelayHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.service.Usage(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	setUsageHeaders(w, usage)
	respondWithJSON(w, http.StatusOK, usage)
}
