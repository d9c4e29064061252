package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	app_errors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/feedback"
	"coursehub/backend/internal/interfaces"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
)

// OpenWorkspaceRequest describes the task a workspace is opened for.
type OpenWorkspaceRequest struct {
	Title        string `json:"title" validate:"max=200" example:"Week 3: Essay outline"`
	Instructions string `json:"instructions" validate:"max=4000" example:"Outline an argument about urban green space."`
}

// EditRequest carries the full editor text. Empty content is allowed.
type EditRequest struct {
	Content string `json:"content" example:"Thesis: cities need more trees."`
}

// FollowUpRequest is one follow-up question about the current feedback.
type FollowUpRequest struct {
	Message string `json:"message" validate:"required,max=2000" example:"Which evidence would fit my second point?"`
}

// SaveResponse is the state after an explicit save plus the version history.
type SaveResponse struct {
	State  *service.WorkspaceState `json:"state"`
	Drafts []*model.Draft          `json:"drafts"`
}

// UnloadResponse reports whether unsaved text was handed to the beacon.
type UnloadResponse struct {
	BeaconSent bool `json:"beacon_sent"`
}

// WorkspaceHandler serves the live editing sessions.
type WorkspaceHandler struct {
	service interfaces.WorkspaceService
}

func NewWorkspaceHandler(svc interfaces.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: svc}
}

func sessionParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "studentID"), chi.URLParam(r, "taskKey")
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation)
	}
	return nil
}

// HandleOpen godoc
// @Summary      Open a workspace
// @Description  Opens the editing session for a student and task, resuming the latest stored version. Opening an open session returns it.
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Param        studentID  path  string                true   "Student ID"
// @Param        taskKey    path  string                true   "Task key"
// @Param        task       body  OpenWorkspaceRequest  false  "Task description"
// @Success      200  {object}  service.WorkspaceState
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey} [post]
func (h *WorkspaceHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	var req OpenWorkspaceRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	state, err := h.service.Open(r.Context(), studentID, taskKey, feedback.Task{Title: req.Title, Instructions: req.Instructions})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// HandleGetState godoc
// @Summary      Get workspace state
// @Description  Returns the draft text, version, save status, feedback and follow-up transcript.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  service.WorkspaceState
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey} [get]
func (h *WorkspaceHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	state, err := h.service.State(studentID, taskKey)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// HandleEdit godoc
// @Summary      Edit the draft
// @Description  Replaces the draft text. Saving happens after a quiet period.
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Param        studentID  path  string       true  "Student ID"
// @Param        taskKey    path  string       true  "Task key"
// @Param        edit       body  EditRequest  true  "New text"
// @Success      200  {object}  service.WorkspaceState
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/content [put]
func (h *WorkspaceHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	var req EditRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	state, err := h.service.Edit(studentID, taskKey, req.Content)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// HandleSave godoc
// @Summary      Save the draft now
// @Description  Writes the current draft version immediately and returns the version history.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  SaveResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/save [post]
func (h *WorkspaceHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	state, drafts, err := h.service.Save(r.Context(), studentID, taskKey)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, SaveResponse{State: state, Drafts: drafts})
}

// HandleFeedback godoc
// @Summary      Request feedback
// @Description  Saves the draft and streams feedback as Server-Sent Events. The final event carries the full feedback and done=true.
// @Tags         Workspaces
// @Produce      text/event-stream
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  model.StreamResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/feedback [post]
func (h *WorkspaceHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	events := newEventStream(w)

	state, err := h.service.RequestFeedback(r.Context(), studentID, taskKey, func(delta string) {
		events.send(model.StreamResponse{Content: delta})
	})
	if err != nil {
		events.fail(err)
		return
	}
	events.send(model.StreamResponse{Done: true, Feedback: state.Feedback})
}

// HandleFollowUp godoc
// @Summary      Ask a follow-up question
// @Description  Runs one follow-up round on the current feedback and streams the reply as Server-Sent Events. The last event has done=true.
// @Tags         Workspaces
// @Accept       json
// @Produce      text/event-stream
// @Param        studentID  path  string           true  "Student ID"
// @Param        taskKey    path  string           true  "Task key"
// @Param        question   body  FollowUpRequest  true  "Question"
// @Success      200  {object}  model.StreamResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/followups [post]
func (h *WorkspaceHandler) HandleFollowUp(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	var req FollowUpRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	events := newEventStream(w)
	_, err := h.service.FollowUp(r.Context(), studentID, taskKey, req.Message, func(delta string) {
		events.send(model.StreamResponse{Content: delta})
	})
	if err != nil {
		events.fail(err)
		return
	}
	events.send(model.StreamResponse{Done: true})
}

// HandleNewVersion godoc
// @Summary      Start a new draft version
// @Description  Starts an empty draft numbered after every stored version. Feedback and follow-ups are cleared.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  service.WorkspaceState
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/versions [post]
func (h *WorkspaceHandler) HandleNewVersion(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	state, err := h.service.NewVersion(studentID, taskKey)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// HandleLoadVersion godoc
// @Summary      Load a stored version
// @Description  Switches the editor to a stored draft version together with its feedback.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string   true  "Student ID"
// @Param        taskKey    path  string   true  "Task key"
// @Param        version    path  integer  true  "Version number"
// @Success      200  {object}  service.WorkspaceState
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/versions/{version}/load [post]
func (h *WorkspaceHandler) HandleLoadVersion(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		respondWithError(w, fmt.Errorf("%w: version must be a positive number", app_errors.ErrValidation))
		return
	}
	state, err := h.service.LoadVersion(r.Context(), studentID, taskKey, version)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// HandleUnload godoc
// @Summary      Leave the workspace
// @Description  Closes the session. Unsaved text is sent as a best-effort beacon save.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  UnloadResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey}/unload [post]
func (h *WorkspaceHandler) HandleUnload(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	sent, err := h.service.Unload(studentID, taskKey)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, UnloadResponse{BeaconSent: sent})
}

// HandleClose godoc
// @Summary      Close the workspace
// @Description  Discards the session and any pending autosave.
// @Tags         Workspaces
// @Produce      json
// @Param        studentID  path  string  true  "Student ID"
// @Param        taskKey    path  string  true  "Task key"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/workspaces/{studentID}/{taskKey} [delete]
func (h *WorkspaceHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	studentID, taskKey := sessionParams(r)
	if err := h.service.Close(studentID, taskKey); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "closed"})
}
