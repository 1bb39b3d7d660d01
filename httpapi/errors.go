package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusCode maps an error to the response status:
// malformed documents are 400, requests that cannot be compiled are 422.
func statusCode(err error) int {
	var (
		lookupErr   *catalog.LookupError
		operatorErr *filter.UnsupportedOperatorError
		literalErr  *filter.LiteralError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &lookupErr),
		errors.As(err, &operatorErr),
		errors.As(err, &literalErr),
		errors.Is(err, agg.ErrEmptySelect),
		errors.Is(err, agg.ErrMissingTable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, aggql.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	id := RequestIDFromContext(r.Context())
	if code >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "request_id", id, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("Request rejected", "request_id", id, "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error(), RequestID: id})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
