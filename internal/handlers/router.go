package handlers

import (
	"net/http"

	"github.com/Daneel-Li/feedback-board/internal/metrics"
	"github.com/Daneel-Li/feedback-board/internal/web"
	"github.com/gorilla/mux"
)

// RouterOptions toggles the optional surfaces.
type RouterOptions struct {
	CORSOrigin    string
	Dashboard     bool
	EnableMetrics bool
}

// Service is everything the router's handlers call.
type Service interface {
	FeedbackService
	web.Service
}

// NewRouter registers the API, the dashboard and /metrics.
func NewRouter(svc Service, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	h := NewSimpleHandler(svc)

	midWares := []Middleware{RequestID, Logging, Recover}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", WithMidWare(h.Health, midWares...)).Methods(http.MethodGet)
	api.HandleFunc("/feedback", WithMidWare(h.AddFeedback, midWares...)).Methods(http.MethodPost)
	api.HandleFunc("/feedback", WithMidWare(h.GetFeedbacks, midWares...)).Methods(http.MethodGet)
	api.HandleFunc("/feedback/export", WithMidWare(h.ExportFeedbacks, midWares...)).Methods(http.MethodGet)
	api.HandleFunc("/stats", WithMidWare(h.GetStats, midWares...)).Methods(http.MethodGet)

	if opts.Dashboard {
		d := web.NewDashboard(svc)
		r.HandleFunc("/", WithMidWare(d.Show, midWares...)).Methods(http.MethodGet)
		r.HandleFunc("/", WithMidWare(d.Submit, midWares...)).Methods(http.MethodPost)
	}
	if opts.EnableMetrics {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	return CORS(opts.CORSOrigin)(r)
}
