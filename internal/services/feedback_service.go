package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Daneel-Li/feedback-board/internal/dao"
	"github.com/Daneel-Li/feedback-board/internal/metrics"
	mxm "github.com/Daneel-Li/feedback-board/internal/models"
)

// SimpleServiceContainer feedback operations over an attachable repository.
// Until Attach is called every data operation fails with ErrServiceUnavailable.
type SimpleServiceContainer struct {
	mu   sync.RWMutex
	repo dao.Repository
}

// NewSimpleServiceContainer creates a container; repo may be nil and attached later.
func NewSimpleServiceContainer(repo dao.Repository) *SimpleServiceContainer {
	return &SimpleServiceContainer{repo: repo}
}

// Attach sets the storage handle once provisioning has finished.
func (c *SimpleServiceContainer) Attach(repo dao.Repository) {
	c.mu.Lock()
	c.repo = repo
	c.mu.Unlock()
}

// Ready reports whether storage is attached.
func (c *SimpleServiceContainer) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo != nil
}

func (c *SimpleServiceContainer) repository() (dao.Repository, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.repo == nil {
		return nil, ErrServiceUnavailable
	}
	return c.repo, nil
}

// ValidateFeedback checks the presence rules shared by every entry point.
func ValidateFeedback(in mxm.FeedbackInput) error {
	if in.Name == "" || in.Message == "" {
		return &ValidationError{Msg: MsgNameAndMessageRequired}
	}
	return nil
}

// AddFeedback validates, inserts, then re-reads the stored row.
func (c *SimpleServiceContainer) AddFeedback(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error) {
	if err := ValidateFeedback(in); err != nil {
		metrics.Submissions.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}
	repo, err := c.repository()
	if err != nil {
		metrics.Submissions.WithLabelValues(metrics.ResultUnavailable).Inc()
		return nil, err
	}

	fb := in.ToFeedback()
	if err := repo.CreateFeedback(ctx, fb); err != nil {
		metrics.Submissions.WithLabelValues(metrics.ResultError).Inc()
		slog.Error("add feedback failed", "name", in.Name, "error", err)
		return nil, fmt.Errorf("add feedback failed: %w", err)
	}

	stored, err := repo.GetFeedbackByID(ctx, fb.ID)
	if err != nil {
		metrics.Submissions.WithLabelValues(metrics.ResultError).Inc()
		slog.Error("reload feedback failed", "id", fb.ID, "error", err)
		return nil, fmt.Errorf("reload feedback failed: %w", err)
	}

	metrics.Submissions.WithLabelValues(metrics.ResultCreated).Inc()
	slog.Info("add feedback success", "id", stored.ID)
	return stored, nil
}

// GetFeedbacks lists every record, newest first.
func (c *SimpleServiceContainer) GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error) {
	repo, err := c.repository()
	if err != nil {
		return nil, err
	}
	feedbacks, err := repo.GetFeedbacks(ctx)
	if err != nil {
		slog.Error("get feedbacks failed", "error", err)
		return nil, fmt.Errorf("get feedbacks failed: %w", err)
	}
	slog.Debug("get feedbacks success", "count", len(feedbacks))
	return feedbacks, nil
}

// GetStats returns the aggregate snapshot.
func (c *SimpleServiceContainer) GetStats(ctx context.Context) (*mxm.Stats, error) {
	repo, err := c.repository()
	if err != nil {
		return nil, err
	}
	st, err := repo.GetStats(ctx)
	if err != nil {
		slog.Error("get stats failed", "error", err)
		return nil, fmt.Errorf("get stats failed: %w", err)
	}
	return st, nil
}

// ExportFeedbacks writes every record as CSV, newest first.
func (c *SimpleServiceContainer) ExportFeedbacks(ctx context.Context, w io.Writer) error {
	feedbacks, err := c.GetFeedbacks(ctx)
	if err != nil {
		return err
	}
	if err := mxm.WriteCSV(w, feedbacks); err != nil {
		return fmt.Errorf("write csv failed: %w", err)
	}
	return nil
}
