// Package httpapi exposes the compiler over HTTP.
//
// /health is public; /v1 routes require a bearer token when an Authenticator
// is configured. Every POST endpoint takes an aggql.Request as a JSON or YAML body:
//
//	POST /v1/sql                 {"sql": "..."}
//	POST /v1/dsl                 bool query document
//	POST /v1/search              search body with aggregations
//	POST /v1/dimensions/{column} {"sql": "..."} member query of one column
//	POST /v1/run                 executed result as JSON, or an Arrow IPC stream
//	                             when the Accept header is ArrowStreamMediaType
package httpapi

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/auth"
)

// ArrowStreamMediaType selects the Arrow IPC stream encoding of /v1/run.
const ArrowStreamMediaType = "application/vnd.apache.arrow.stream"

// maxBodySize bounds request documents.
const maxBodySize = 4 << 20

// Config configures the HTTP handler.
type Config struct {
	// Compiler compiles requests. Required.
	Compiler *aggql.Compiler

	// Executor runs /v1/run requests.
	// OPTIONAL: If nil, /v1/run responds 501.
	Executor aggql.Executor

	// Allocator for Arrow responses.
	// OPTIONAL: Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger for request errors.
	// OPTIONAL: Defaults to the compiler logger.
	Logger *slog.Logger

	// Authenticator validates bearer tokens of /v1 requests.
	// OPTIONAL: If nil, requests are not authenticated.
	Authenticator auth.Authenticator

	// AccessLog enables the chi request logger.
	AccessLog bool
}

type handler struct {
	compiler  *aggql.Compiler
	executor  aggql.Executor
	allocator memory.Allocator
	logger    *slog.Logger
}

// NewHandler returns the HTTP API router. It panics if config has no compiler.
func NewHandler(config Config) http.Handler {
	if config.Compiler == nil {
		panic("httpapi: nil compiler")
	}
	h := &handler{
		compiler:  config.Compiler,
		executor:  config.Executor,
		allocator: config.Allocator,
		logger:    config.Logger,
	}
	if h.allocator == nil {
		h.allocator = memory.DefaultAllocator
	}
	if h.logger == nil {
		h.logger = config.Compiler.Logger()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	if config.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		if config.Authenticator != nil {
			r.Use(authenticate(config.Authenticator))
		}
		r.Post("/sql", h.sql)
		r.Post("/dsl", h.dsl)
		r.Post("/search", h.search)
		r.Post("/dimensions/{column}", h.dimensions)
		r.Post("/run", h.run)
	})
	return r
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request) (aggql.Request, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.fail(w, r, err)
		return aggql.Request{}, false
	}
	req, err := aggql.DecodeRequest(data)
	if err != nil {
		h.fail(w, r, err)
		return aggql.Request{}, false
	}
	return req, true
}

func (h *handler) sql(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	query, err := h.compiler.SQL(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sqlResponse{SQL: query})
}

func (h *handler) dsl(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	doc, err := h.compiler.DSL(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	doc, err := h.compiler.Search(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handler) dimensions(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	query, err := h.compiler.DimensionValues(req, chi.URLParam(r, "column"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sqlResponse{SQL: query})
}
