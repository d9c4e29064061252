package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursehub/backend/internal/api"
	app_errors "coursehub/backend/internal/errors"
	"coursehub/backend/internal/interfaces/mocks"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
)

func setupDraftHandler(t *testing.T) (*api.DraftHandler, *mocks.MockDraftService) {
	mockSvc := mocks.NewMockDraftService(t)
	return api.NewDraftHandler(mockSvc), mockSvc
}

func TestDraftHandler_ListDrafts(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupDraftHandler(t)
		fb := "**Good**"
		views := []*service.DraftView{{
			Draft:          &model.Draft{ID: "d1", StudentID: studentID, TaskKey: taskKey, Version: 1, AIFeedback: &fb},
			AIFeedbackHTML: "<p><strong>Good</strong></p>\n",
		}}
		mockSvc.On("History", mock.Anything, studentID, taskKey).Return(views, nil).Once()

		rr := httptest.NewRecorder()
		handler.HandleListDrafts(rr, httptest.NewRequest(http.MethodGet, "/api/v1/drafts?student_id="+studentID+"&task_key="+taskKey, nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "d1", got[0]["id"])
		assert.Equal(t, "**Good**", got[0]["ai_feedback"])
		assert.Equal(t, "<p><strong>Good</strong></p>\n", got[0]["ai_feedback_html"])
	})

	t.Run("Failure - Missing query", func(t *testing.T) {
		handler, _ := setupDraftHandler(t)

		rr := httptest.NewRecorder()
		handler.HandleListDrafts(rr, httptest.NewRequest(http.MethodGet, "/api/v1/drafts?student_id=s1", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDraftHandler_Beacon(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		handler, mockSvc := setupDraftHandler(t)
		want := &model.BeaconPayload{StudentID: studentID, TaskKey: taskKey, Version: 2, Content: "last words"}
		mockSvc.On("ReceiveBeacon", mock.Anything, want).Return(nil).Once()

		// Browsers send beacons as text/plain.
		req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts/beacon",
			strings.NewReader(`{"student_id":"s-100","task_key":"week3-outline","version":2,"content":"last words"}`))
		req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
		rr := httptest.NewRecorder()
		handler.HandleBeacon(rr, req)

		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("Failure - Missing version", func(t *testing.T) {
		handler, _ := setupDraftHandler(t)

		rr := httptest.NewRecorder()
		handler.HandleBeacon(rr, httptest.NewRequest(http.MethodPost, "/api/v1/drafts/beacon",
			strings.NewReader(`{"student_id":"s-100","task_key":"week3-outline","content":"x"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Store error", func(t *testing.T) {
		handler, mockSvc := setupDraftHandler(t)
		mockSvc.On("ReceiveBeacon", mock.Anything, mock.Anything).Return(fmt.Errorf("%w: disk full", app_errors.ErrPersistence)).Once()

		rr := httptest.NewRecorder()
		handler.HandleBeacon(rr, httptest.NewRequest(http.MethodPost, "/api/v1/drafts/beacon",
			strings.NewReader(`{"student_id":"s-100","task_key":"week3-outline","version":1,"content":"x"}`)))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
