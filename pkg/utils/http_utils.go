package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON shape of every API error response.
type ErrorBody struct {
	Error string `json:"error"`
}

func WriteHttpResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encode response failed", "error", err)
		}
	}
}

func WriteHttpError(w http.ResponseWriter, code int, msg string) {
	WriteHttpResponse(w, code, ErrorBody{Error: msg})
}

// DecodeJSONBody reads at most limit bytes of r's body into v.
func DecodeJSONBody(r *http.Request, v interface{}, limit int64) error {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, limit)).Decode(v); err != nil {
		return fmt.Errorf("error reading body: %w", err)
	}
	return nil
}
