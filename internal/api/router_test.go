package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coursehub/backend/internal/api"
	"coursehub/backend/internal/interfaces/mocks"
	"coursehub/backend/internal/service"
)

func TestRouter(t *testing.T) {
	workspaces := mocks.NewMockWorkspaceService(t)
	drafts := mocks.NewMockDraftService(t)
	relay := mocks.NewMockRelayService(t)
	router := api.NewRouter(api.NewWorkspaceHandler(workspaces), api.NewDraftHandler(drafts), api.NewRelayHandler(relay))

	t.Run("Health check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Path parameters reach the handler", func(t *testing.T) {
		workspaces.On("LoadVersion", mock.Anything, "s-1", "w-2", 4).Return(&service.WorkspaceState{Version: 4}, nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/s-1/w-2/versions/4/load", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Streaming route", func(t *testing.T) {
		workspaces.On("RequestFeedback", mock.Anything, "s-1", "w-2", mock.Anything).Return(&service.WorkspaceState{Feedback: "ok"}, nil).Once()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/s-1/w-2/feedback", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	})

	t.Run("Unknown route", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
