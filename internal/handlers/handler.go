package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/internal/services"
	"github.com/Daneel-Li/feedback-board/pkg/utils"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgNotInitialized = "Database not initialized"
	msgServerError    = "Server error"
	msgExportFailed   = "Export failed"

	maxBodyBytes = 1 << 20
)

// FeedbackService is what the HTTP layer needs from the service container.
type FeedbackService interface {
	AddFeedback(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error)
	GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error)
	GetStats(ctx context.Context) (*mxm.Stats, error)
	ExportFeedbacks(ctx context.Context, w io.Writer) error
}

var _ FeedbackService = (*services.SimpleServiceContainer)(nil)

// SimpleHandler JSON API handlers
type SimpleHandler struct {
	services FeedbackService
	now      func() time.Time
}

// NewSimpleHandler creates the API handlers
func NewSimpleHandler(svc FeedbackService) *SimpleHandler {
	return &SimpleHandler{services: svc, now: time.Now}
}

// handleError maps service errors to status codes. internalMsg is what the caller
// sees for unexpected failures; the detail only goes to the log.
func (h *SimpleHandler) handleError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.WriteHttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrServiceUnavailable):
		utils.WriteHttpError(w, http.StatusServiceUnavailable, msgNotInitialized)
	default:
		slog.Error("Handler error", "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
		utils.WriteHttpError(w, http.StatusInternalServerError, internalMsg)
	}
}

// Health liveness probe; never touches storage.
func (h *SimpleHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteHttpResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now().UnixMilli(),
	})
}

// AddFeedback creates a feedback record and returns the stored row.
func (h *SimpleHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	var in mxm.FeedbackInput
	if err := utils.DecodeJSONBody(r, &in, maxBodyBytes); err != nil {
		slog.Warn("error unmarshal body", "err", err)
		utils.WriteHttpError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	fb, err := h.services.AddFeedback(r.Context(), in)
	if err != nil {
		h.handleError(w, r, err, msgServerError)
		return
	}

	utils.WriteHttpResponse(w, http.StatusCreated, fb)
}

// GetFeedbacks lists every record, newest first.
func (h *SimpleHandler) GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := h.services.GetFeedbacks(r.Context())
	if err != nil {
		h.handleError(w, r, err, msgServerError)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, feedbacks)
}

// GetStats returns the aggregate snapshot.
func (h *SimpleHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.services.GetStats(r.Context())
	if err != nil {
		h.handleError(w, r, err, msgServerError)
		return
	}
	utils.WriteHttpResponse(w, http.StatusOK, st)
}

// ExportFeedbacks sends every record as a CSV attachment. The document is
// rendered fully before any header goes out so a failure can still be a 500.
func (h *SimpleHandler) ExportFeedbacks(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.services.ExportFeedbacks(r.Context(), &buf); err != nil {
		h.handleError(w, r, err, msgExportFailed)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+mxm.CSVFileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write export failed", "error", err)
	}
}
