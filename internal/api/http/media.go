package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neuropulse/neuropulse-server/internal/storage"
)

// MediaHandler streams MCQ images straight from the blob store. Production
// deploys put a CDN in front of the bucket instead; this path exists for the
// fs driver and local development.
func MediaHandler(blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" || strings.Contains(key, "..") {
			writeError(w, http.StatusBadRequest, "invalid key")
			return
		}

		rc, err := blobs.Get(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		defer rc.Close()

		if strings.HasSuffix(key, ".webp") {
			w.Header().Set("Content-Type", "image/webp")
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = io.Copy(w, rc)
	}
}
