package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/blog"
)

// BlogSectionsHandler lists the registered blog sections.
func BlogSectionsHandler(svc *blog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sections": svc.Sections()})
	}
}

// BlogPageHandler serves one listing page of a section.
func BlogPageHandler(svc *blog.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := chi.URLParam(r, "section")
		page := queryInt(r, "page", 1)

		out, err := svc.Page(r.Context(), section, page)
		if err != nil {
			if errors.Is(err, blog.ErrUnknownSection) {
				writeError(w, http.StatusNotFound, "unknown section: "+section)
				return
			}
			log.Errorf("blog: page %s/%d: %v", section, page, err)
			writeError(w, http.StatusInternalServerError, "could not load posts")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// BlogRefreshHandler drops a section's cached pages after new posts deploy.
func BlogRefreshHandler(svc *blog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		section := chi.URLParam(r, "section")
		if err := svc.Refresh(r.Context(), section); err != nil {
			writeError(w, http.StatusNotFound, "unknown section: "+section)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "section": section})
	}
}
