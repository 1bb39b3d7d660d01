package httpapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/hugr-lab/aggql/filter"
	"github.com/hugr-lab/aggql/internal/serialize"
	"github.com/hugr-lab/aggql/result"
)

type sqlResponse struct {
	SQL string `json:"sql"`
}

type columnResponse struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
}

type runResponse struct {
	Columns []columnResponse `json:"columns"`
	// Rows hold one cell per position; null dimension members are JSON null.
	Rows [][]*string `json:"rows"`
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	if h.executor == nil {
		writeError(w, http.StatusNotImplemented, "no executor configured")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.compiler.Run(r.Context(), h.executor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), ArrowStreamMediaType) {
		h.writeArrow(w, r, res)
		return
	}
	writeJSON(w, http.StatusOK, runResponseOf(res))
}

func (h *handler) writeArrow(w http.ResponseWriter, r *http.Request, res *result.AggregateResult) {
	record := res.RecordBatch(h.allocator)
	defer record.Release()

	var buf bytes.Buffer
	if err := serialize.WriteIPC(&buf, record.Schema(), h.allocator, record); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ArrowStreamMediaType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func runResponseOf(res *result.AggregateResult) runResponse {
	out := runResponse{
		Columns: make([]columnResponse, 0, len(res.Index)),
		Rows:    make([][]*string, 0, len(res.Data)),
	}
	width := result.Width(res.Index)
	dims := make([]bool, width)
	for _, c := range res.Index {
		out.Columns = append(out.Columns, columnResponse{Name: c.Name, Kind: c.Kind.String(), Position: c.Index})
		if c.Kind.IsDimension() {
			dims[c.Index] = true
		}
	}
	for _, row := range res.Data {
		cells := make([]*string, len(row))
		for i := range row {
			if dims[i] && row[i] == filter.NullSentinel {
				continue
			}
			cells[i] = &row[i]
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
