package http

import (
	"errors"
	"net/http"

	"github.com/neuropulse/neuropulse-server/internal/videos"
)

// ListVideosHandler proxies the channel's latest uploads from YouTube,
// hiding which API key served the request.
func ListVideosHandler(svc *videos.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), r.URL.Query().Get("pageToken"))
		if err != nil {
			var apiErr *videos.APIError
			switch {
			case errors.Is(err, videos.ErrExhausted):
				writeError(w, http.StatusServiceUnavailable, err.Error())
			case errors.As(err, &apiErr):
				writeError(w, apiErr.Status, apiErr.Message)
			default:
				writeError(w, http.StatusInternalServerError, "could not load videos")
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}
}
