// Package web serves the server-rendered dashboard: the submission form, the
// four aggregate cards and the record table.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/internal/services"
	"github.com/Daneel-Li/feedback-board/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"deref": utils.Deref[string],
}).ParseFS(templateFS, "templates/dashboard.html"))

// Service is the subset of the service container the dashboard reads and writes.
type Service interface {
	AddFeedback(ctx context.Context, in mxm.FeedbackInput) (*mxm.Feedback, error)
	GetFeedbacks(ctx context.Context) ([]*mxm.Feedback, error)
	GetStats(ctx context.Context) (*mxm.Stats, error)
}

type formValues struct {
	Name    string
	Email   string
	Message string
	Rating  int
}

type pageData struct {
	Form      formValues
	Ratings   []int
	Stats     mxm.Stats
	Feedbacks []*mxm.Feedback
	Error     string
}

type Dashboard struct {
	svc Service
}

func NewDashboard(svc Service) *Dashboard {
	return &Dashboard{svc: svc}
}

// Show renders the dashboard with an empty form.
func (d *Dashboard) Show(w http.ResponseWriter, r *http.Request) {
	d.render(w, r, http.StatusOK, formValues{Rating: 5}, "")
}

// Submit handles the form post. Success redirects back to the dashboard so a
// reload does not resubmit.
func (d *Dashboard) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		d.render(w, r, http.StatusBadRequest, formValues{Rating: 5}, "Invalid form")
		return
	}
	form := formValues{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
		Rating:  5,
	}
	if v, err := strconv.Atoi(r.PostFormValue("rating")); err == nil {
		form.Rating = v
	}

	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Message) == "" {
		d.render(w, r, http.StatusBadRequest, form, services.MsgNameAndMessageRequired)
		return
	}

	_, err := d.svc.AddFeedback(r.Context(), mxm.FeedbackInput{
		Name:    form.Name,
		Email:   &form.Email,
		Message: form.Message,
		Rating:  &form.Rating,
	})
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, services.ErrValidation):
		d.render(w, r, http.StatusBadRequest, form, err.Error())
	case errors.Is(err, services.ErrServiceUnavailable):
		d.render(w, r, http.StatusServiceUnavailable, form, "Database not initialized")
	default:
		slog.Error("dashboard submit failed", "error", err)
		d.render(w, r, http.StatusInternalServerError, form, "Failed to submit")
	}
}

func (d *Dashboard) render(w http.ResponseWriter, r *http.Request, status int, form formValues, errMsg string) {
	data := pageData{
		Form:    form,
		Ratings: []int{5, 4, 3, 2, 1},
		Error:   errMsg,
	}

	feedbacks, err := d.svc.GetFeedbacks(r.Context())
	if err == nil {
		var st *mxm.Stats
		if st, err = d.svc.GetStats(r.Context()); err == nil {
			data.Feedbacks = feedbacks
			data.Stats = *st
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrServiceUnavailable) {
			status = http.StatusServiceUnavailable
			data.Error = "Database not initialized"
		} else {
			slog.Error("dashboard load failed", "error", err)
			status = http.StatusInternalServerError
			data.Error = "Failed to load feedback"
		}
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		slog.Error("render dashboard failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write dashboard failed", "error", err)
	}
}
