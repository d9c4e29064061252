package api

import (
	"fmt"
	"net/http"
	"strings"

	app_errors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/interfaces"
	"coursehub/backend/internal/model"
)

// DraftHandler serves stored draft history and the unload beacon receiver.
type DraftHandler struct {
	service interfaces.DraftService
}

func NewDraftHandler(svc interfaces.DraftService) *DraftHandler {
	return &DraftHandler{service: svc}
}

// HandleListDrafts godoc
// @Summary      List draft versions
// @Description  Returns every stored version of a student's draft for a task, newest first, with feedback rendered as HTML.
// @Tags         Drafts
// @Produce      json
// @Param        student_id  query  string  true  "Student ID"
// @Param        task_key    query  string  true  "Task key"
// @Success      200  {array}   service.DraftView
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/drafts [get]
func (h *DraftHandler) HandleListDrafts(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
	taskKey := strings.TrimSpace(r.URL.Query().Get("task_key"))
	if studentID == "" || taskKey == "" {
		respondWithError(w, fmt.Errorf("%w: student_id and task_key are required", app_errors.ErrValidation))
		return
	}

	drafts, err := h.service.History(r.Context(), studentID, taskKey)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, drafts)
}

// HandleBeacon godoc
// @Summary      Receive an unload beacon
// @Description  Stores the last unsaved text of a page that is being closed. Delivery is best effort.
// @Tags         Drafts
// @Accept       json
// @Produce      json
// @Param        beacon  body  model.BeaconPayload  true  "Unsaved draft"
// @Success      202  {object}  StatusResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/drafts/beacon [post]
func (h *DraftHandler) HandleBeacon(w http.ResponseWriter, r *http.Request) {
	var payload model.BeaconPayload
	if err := decodeBody(r, &payload); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&payload); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.ReceiveBeacon(r.Context(), &payload); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}
