package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

const (
	pageLimitDefault = 10
	pageLimitMax     = 50
)

// ListMCQHandler serves a paginated slice of published MCQs.
func ListMCQHandler(reader *mcq.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", pageLimitDefault)
		if limit > pageLimitMax {
			limit = pageLimitMax
		}

		out, err := reader.GetPage(r.Context(), page, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not load MCQs")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetMCQHandler serves one published MCQ by id.
func GetMCQHandler(reader *mcq.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mcqID := chi.URLParam(r, "mcqID")
		if !mcq.IsWellFormedID(mcqID) {
			writeError(w, http.StatusBadRequest, "invalid mcq_id: "+mcqID)
			return
		}

		rec, err := reader.GetByID(r.Context(), mcqID)
		if err != nil {
			if errors.Is(err, mcq.ErrNotFound) {
				writeError(w, http.StatusNotFound, "MCQ not found: "+mcqID)
				return
			}
			writeError(w, http.StatusInternalServerError, "could not load MCQ")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// CountMCQHandler serves the published total.
func CountMCQHandler(reader *mcq.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := reader.Count(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not count MCQs")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
