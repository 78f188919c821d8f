package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFeedbackService mock service container
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) AddFeedback(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mxm.Feedback), args.Error(1)
}

func (m *MockFeedbackService) GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mxm.Feedback), args.Error(1)
}

func (m *MockFeedbackService) GetStats(ctx context.Context) (*mxm.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mxm.Stats), args.Error(1)
}

func (m *MockFeedbackService) ExportFeedbacks(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func createJSONRequest(method, url string, body interface{}) *http.Request {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reqBody)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	h := NewSimpleHandler(&MockFeedbackService{})
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","timestamp":1700000000000}`, w.Body.String())
}

func TestAddFeedbackHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		rating := 4
		stored := &mxm.Feedback{ID: 3, Name: "Ann", Message: "hi", Rating: &rating,
			CreatedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
		svc.On("AddFeedback", mock.Anything, mxm.FeedbackInput{Name: "Ann", Message: "hi", Rating: &rating}).
			Return(stored, nil)

		w := httptest.NewRecorder()
		h.AddFeedback(w, createJSONRequest(http.MethodPost, "/api/feedback",
			map[string]interface{}{"name": "Ann", "message": "hi", "rating": 4}))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":3,"name":"Ann","email":null,"message":"hi","rating":4,"createdAt":"2026-10-18T09:00:00Z"}`,
			w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("invalid json"))

		w := httptest.NewRecorder()
		h.AddFeedback(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, msgInvalidBody, decodeError(t, w))
		svc.AssertNotCalled(t, "AddFeedback", mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		svc.On("AddFeedback", mock.Anything, mock.Anything).
			Return(nil, &services.ValidationError{Msg: services.MsgNameAndMessageRequired})

		w := httptest.NewRecorder()
		h.AddFeedback(w, createJSONRequest(http.MethodPost, "/api/feedback", map[string]string{"name": "Ann"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, services.MsgNameAndMessageRequired, decodeError(t, w))
	})

	t.Run("Unavailable", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		svc.On("AddFeedback", mock.Anything, mock.Anything).Return(nil, services.ErrServiceUnavailable)

		w := httptest.NewRecorder()
		h.AddFeedback(w, createJSONRequest(http.MethodPost, "/api/feedback",
			map[string]string{"name": "Ann", "message": "hi"}))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, msgNotInitialized, decodeError(t, w))
	})

	t.Run("InternalErrorHidesDetail", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		svc.On("AddFeedback", mock.Anything, mock.Anything).
			Return(nil, errors.New("Error 1045: Access denied for user 'root'"))

		w := httptest.NewRecorder()
		h.AddFeedback(w, createJSONRequest(http.MethodPost, "/api/feedback",
			map[string]string{"name": "Ann", "message": "hi"}))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgServerError, decodeError(t, w))
	})
}

func TestGetStatsHandler(t *testing.T) {
	svc := &MockFeedbackService{}
	h := NewSimpleHandler(svc)
	svc.On("GetStats", mock.Anything).Return(&mxm.Stats{Total: 4, AvgRating: 3.5, Positive: 2, Negative: 1}, nil)

	w := httptest.NewRecorder()
	h.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":4,"avgRating":3.5,"positive":2,"negative":1}`, w.Body.String())
}

func TestExportHandler(t *testing.T) {
	t.Run("Attachment", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		svc.On("ExportFeedbacks", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			io.WriteString(args.Get(1).(io.Writer), "id,name,email,rating,message,createdAt")
		}).Return(nil)

		w := httptest.NewRecorder()
		h.ExportFeedbacks(w, httptest.NewRequest(http.MethodGet, "/api/feedback/export", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="feedbacks.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "id,name,email,rating,message,createdAt", w.Body.String())
	})

	t.Run("Failure", func(t *testing.T) {
		svc := &MockFeedbackService{}
		h := NewSimpleHandler(svc)
		svc.On("ExportFeedbacks", mock.Anything, mock.Anything).Return(errors.New("timeout"))

		w := httptest.NewRecorder()
		h.ExportFeedbacks(w, httptest.NewRequest(http.MethodGet, "/api/feedback/export", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgExportFailed, decodeError(t, w))
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})
}

func TestExportRoundTrip(t *testing.T) {
	svc := &MockFeedbackService{}
	h := NewSimpleHandler(svc)
	svc.On("ExportFeedbacks", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		records := []*mxm.Feedback{{ID: 1, Name: "Ann", Message: `He said "hi"`}}
		require.NoError(t, mxm.WriteCSV(args.Get(1).(io.Writer), records))
	}).Return(nil)

	w := httptest.NewRecorder()
	h.ExportFeedbacks(w, httptest.NewRequest(http.MethodGet, "/api/feedback/export", nil))

	assert.Contains(t, w.Body.String(), `"He said ""hi"""`)
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `He said "hi"`, rows[1][4])
}

func TestRecover(t *testing.T) {
	panicking := func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}
	h := WithMidWare(panicking, RequestID, Logging, Recover)

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h(w, httptest.NewRequest(http.MethodGet, "/api/feedback", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Server error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
