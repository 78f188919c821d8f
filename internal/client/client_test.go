package client

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Daneel-Li/feedback-board/internal/dao"
	"github.com/Daneel-Li/feedback-board/internal/handlers"
	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func startAPI(t *testing.T, repo dao.Repository) *Client {
	t.Helper()
	svc := services.NewSimpleServiceContainer(repo)
	srv := httptest.NewServer(handlers.NewRouter(svc, handlers.RouterOptions{}))
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := startAPI(t, dao.NewMemoryRepository())

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.NotZero(t, h.Timestamp)

	fb, err := c.CreateFeedback(ctx, mxm.FeedbackInput{Name: "Ann", Message: "hi", Rating: intPtr(4)})
	require.NoError(t, err)
	assert.NotZero(t, fb.ID)

	list, err := c.ListFeedback(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fb.ID, list[0].ID)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Total)
	assert.Equal(t, int64(1), st.Positive)

	var buf bytes.Buffer
	require.NoError(t, c.DownloadExport(ctx, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "id,name,email,rating,message,createdAt\n"))
}

func TestClientSurfacesServerMessage(t *testing.T) {
	c := startAPI(t, dao.NewMemoryRepository())

	_, err := c.CreateFeedback(context.Background(), mxm.FeedbackInput{Name: "Ann"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, services.MsgNameAndMessageRequired, apiErr.Message)
}

func TestDashboardSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("ClientSideValidation", func(t *testing.T) {
		d := NewDashboard(startAPI(t, dao.NewMemoryRepository()))
		_, err := d.Submit(ctx, mxm.FeedbackInput{Name: "  ", Message: "hi"})
		assert.ErrorIs(t, err, ErrMissingFields)
		assert.Equal(t, ErrMissingFields.Error(), d.LastError())
		assert.Equal(t, StateIdle, d.State())
	})

	t.Run("SuccessRefreshes", func(t *testing.T) {
		d := NewDashboard(startAPI(t, dao.NewMemoryRepository()))
		require.NoError(t, d.Load(ctx))
		assert.Empty(t, d.Feedbacks())

		_, err := d.Submit(ctx, mxm.FeedbackInput{Name: "Ann", Message: "hi", Rating: intPtr(2)})
		require.NoError(t, err)
		assert.Len(t, d.Feedbacks(), 1)
		assert.Equal(t, int64(1), d.Stats().Negative)
		assert.Empty(t, d.LastError())
		assert.Equal(t, StateIdle, d.State())
	})

	t.Run("ServerFailureKeepsState", func(t *testing.T) {
		// storage never attached: every data call answers 503
		d := NewDashboard(startAPI(t, nil))
		_, err := d.Submit(ctx, mxm.FeedbackInput{Name: "Ann", Message: "hi"})
		require.Error(t, err)
		assert.Equal(t, "Database not initialized", d.LastError())
		assert.Empty(t, d.Feedbacks())
		assert.Equal(t, mxm.Stats{}, d.Stats())
		assert.Equal(t, StateIdle, d.State())
	})
}

func TestDashboardExport(t *testing.T) {
	ctx := context.Background()

	var listCalls atomic.Int32
	svc := services.NewSimpleServiceContainer(dao.NewMemoryRepository())
	api := handlers.NewRouter(svc, handlers.RouterOptions{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/feedback" {
			listCalls.Add(1)
		}
		api.ServeHTTP(w, r)
	}))
	defer srv.Close()

	_, err := svc.AddFeedback(ctx, mxm.FeedbackInput{Name: "Ann", Message: `He said "hi"`})
	require.NoError(t, err)

	t.Run("FetchesWhenNothingLoaded", func(t *testing.T) {
		d := NewDashboard(New(srv.URL, srv.Client()))
		var buf bytes.Buffer
		require.NoError(t, d.ExportCSV(ctx, &buf))
		assert.Equal(t, int32(1), listCalls.Load())

		rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, `He said "hi"`, rows[1][4])
	})

	t.Run("UsesLoadedList", func(t *testing.T) {
		d := NewDashboard(New(srv.URL, srv.Client()))
		require.NoError(t, d.Load(ctx))
		before := listCalls.Load()

		var local bytes.Buffer
		require.NoError(t, d.ExportCSV(ctx, &local))
		assert.Equal(t, before, listCalls.Load())

		var remote bytes.Buffer
		require.NoError(t, New(srv.URL, srv.Client()).DownloadExport(ctx, &remote))
		assert.Equal(t, remote.String(), local.String())
	})
}
