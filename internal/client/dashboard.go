package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
)

// State of the submit cycle: idle -> submitting -> idle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// ErrMissingFields is the client-side presence check failure.
var ErrMissingFields = errors.New("Name and message are required")

// ErrBusy is returned when Submit is called while another submit is in flight.
var ErrBusy = errors.New("a submission is already in progress")

// Dashboard holds what the UI shows: the record list, the aggregate cards and
// the last submit error. Nothing is refreshed optimistically.
type Dashboard struct {
	api *Client

	mu        sync.Mutex
	state     State
	feedbacks []*mxm.Feedback
	stats     mxm.Stats
	lastErr   string
}

func NewDashboard(api *Client) *Dashboard {
	return &Dashboard{api: api}
}

// Load fetches the list and the aggregate snapshot once.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.refreshList(ctx); err != nil {
		return err
	}
	return d.refreshStats(ctx)
}

// Submit validates locally, posts, and on success refreshes list then stats.
// On failure the server's message is kept in LastError and nothing else changes.
func (d *Dashboard) Submit(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error) {
	d.mu.Lock()
	if d.state == StateSubmitting {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.lastErr = ""
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Message) == "" {
		d.lastErr = ErrMissingFields.Error()
		d.mu.Unlock()
		return nil, ErrMissingFields
	}
	d.state = StateSubmitting
	d.mu.Unlock()

	fb, err := d.api.CreateFeedback(ctx, in)
	if err != nil {
		msg := "Failed to submit"
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		d.mu.Lock()
		d.state = StateIdle
		d.lastErr = msg
		d.mu.Unlock()
		return nil, err
	}

	refreshErr := d.Load(ctx)
	d.mu.Lock()
	d.state = StateIdle
	d.mu.Unlock()
	return fb, refreshErr
}

// ExportCSV writes the loaded list as CSV; with nothing loaded it fetches the
// list first.
func (d *Dashboard) ExportCSV(ctx context.Context, w io.Writer) error {
	rows := d.Feedbacks()
	if len(rows) == 0 {
		fresh, err := d.api.ListFeedback(ctx)
		if err != nil {
			return err
		}
		rows = fresh
	}
	return mxm.WriteCSV(w, rows)
}

func (d *Dashboard) refreshList(ctx context.Context) error {
	list, err := d.api.ListFeedback(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.feedbacks = list
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) refreshStats(ctx context.Context) error {
	st, err := d.api.Stats(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.stats = *st
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dashboard) Feedbacks() []*mxm.Feedback {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*mxm.Feedback, len(d.feedbacks))
	copy(out, d.feedbacks)
	return out
}

func (d *Dashboard) Stats() mxm.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Dashboard) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}
