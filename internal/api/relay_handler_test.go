package api_test

import (
	"context"
	"errors"
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
	"coursehub/backend/internal/llm"
	"coursehub/backend/internal/model"
	"coursehub/backend/internal/service"
	"coursehub/backend/internal/stream"
)

func setupRelayHandler(t *testing.T) (*api.RelayHandler, *mocks.MockRelayService) {
	mockSvc := mocks.NewMockRelayService(t)
	return api.NewRelayHandler(mockSvc), mockSvc
}

func chatRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const chatBody = `{"student_id":"s1","messages":[{"role":"user","content":"Is my claim clear?"}],"meta":{"week_title":"Week 3"}}`

func TestRelayHandler_Chat(t *testing.T) {
	t.Run("Streams completion chunks", func(t *testing.T) {
		// ARRANGE
		handler, mockSvc := setupRelayHandler(t)
		mockSvc.On("Acquire", mock.Anything, "s1").Return(&model.Usage{StudentID: "s1", RequestCount: 3, Limit: 50}, nil).Once()
		mockSvc.On("Stream", mock.Anything, mock.MatchedBy(func(r *service.ChatRequest) bool {
			return len(r.Messages) == 1 && r.Meta != nil && r.Meta.WeekTitle == "Week 3"
		}), mock.Anything).Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- llm.StreamResponse)
			ch <- llm.StreamResponse{Content: "Mostly, "}
			ch <- llm.StreamResponse{Content: "yes."}
			ch <- llm.StreamResponse{Done: true}
			close(ch)
		}).Return(nil).Once()

		// ACT
		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(chatBody))

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "3", rr.Header().Get("X-Usage-Used"))
		assert.Equal(t, "50", rr.Header().Get("X-Usage-Limit"))
		assert.Equal(t,
			`data: {"choices":[{"delta":{"content":"Mostly, "}}]}`+"\n\n"+
				`data: {"choices":[{"delta":{"content":"yes."}}]}`+"\n\n"+
				"data: [DONE]\n\n",
			rr.Body.String())
	})

	t.Run("Output decodes with the stream decoder", func(t *testing.T) {
		handler, mockSvc := setupRelayHandler(t)
		mockSvc.On("Acquire", mock.Anything, "s1").Return(&model.Usage{RequestCount: 1, Limit: 50}, nil).Once()
		mockSvc.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- llm.StreamResponse)
			ch <- llm.StreamResponse{Content: "café \"quoted\"\nline"}
			close(ch)
		}).Return(nil).Once()

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(chatBody))

		text, err := stream.Collect(context.Background(), stream.NewDecoder(rr.Body), nil)
		require.NoError(t, err)
		assert.Equal(t, "café \"quoted\"\nline", text)
	})

	t.Run("Limit reached", func(t *testing.T) {
		handler, mockSvc := setupRelayHandler(t)
		mockSvc.On("Acquire", mock.Anything, "s1").
			Return(&model.Usage{RequestCount: 50, Limit: 50}, fmt.Errorf("%w: 50 of 50 requests used today", app_errors.ErrRateLimited)).Once()

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(chatBody))

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "50", rr.Header().Get("X-Usage-Used"))
		assert.Contains(t, decodeError(t, rr), "daily AI limit reached")
	})

	t.Run("Failure - No messages", func(t *testing.T) {
		handler, _ := setupRelayHandler(t)

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(`{"student_id":"s1","messages":[]}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Unknown role", func(t *testing.T) {
		handler, _ := setupRelayHandler(t)

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(`{"messages":[{"role":"tool","content":"x"}]}`))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Upstream refuses before any text", func(t *testing.T) {
		handler, mockSvc := setupRelayHandler(t)
		mockSvc.On("Acquire", mock.Anything, "s1").Return(&model.Usage{RequestCount: 1, Limit: 50}, nil).Once()
		mockSvc.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			close(args.Get(2).(chan<- llm.StreamResponse))
		}).Return(&stream.RequestFailedError{Status: 401, Message: "invalid api key"}).Once()

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(chatBody))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.NotContains(t, rr.Body.String(), "api key")
	})

	t.Run("Failure - Upstream breaks mid-stream", func(t *testing.T) {
		handler, mockSvc := setupRelayHandler(t)
		mockSvc.On("Acquire", mock.Anything, "s1").Return(&model.Usage{RequestCount: 1, Limit: 50}, nil).Once()
		mockSvc.On("Stream", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- llm.StreamResponse)
			ch <- llm.StreamResponse{Content: "Par"}
			close(ch)
		}).Return(errors.New("connection reset")).Once()

		rr := httptest.NewRecorder()
		handler.HandleChat(rr, chatRequest(chatBody))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "event: error\n")
		assert.NotContains(t, rr.Body.String(), "[DONE]")
	})
}

func TestRelayHandler_Usage(t *testing.T) {
	handler, mockSvc := setupRelayHandler(t)
	mockSvc.On("Usage", mock.Anything, "s1").Return(&model.Usage{StudentID: "s1", UsageDate: "2025-03-03", RequestCount: 7, Limit: 50}, nil).Once()

	rr := httptest.NewRecorder()
	req := addChiURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/usage/s1", nil), map[string]string{"studentID": "s1"})
	handler.HandleUsage(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"student_id":"s1","usage_date":"2025-03-03","request_count":7,"limit":50}`, rr.Body.String())
}
