package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/analytics"
	"github.com/neuropulse/neuropulse-server/internal/auth"
)

func AnalyticsSummaryHandler(svc *analytics.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		out, err := svc.Summary(r.Context(), u.ID)
		if err != nil {
			log.Errorf("analytics: summary for user %d: %v", u.ID, err)
			writeError(w, http.StatusInternalServerError, "could not load summary")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func AnalyticsTopicsHandler(svc *analytics.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		out, err := svc.Topics(r.Context(), u.ID)
		if err != nil {
			log.Errorf("analytics: topics for user %d: %v", u.ID, err)
			writeError(w, http.StatusInternalServerError, "could not load topics")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"topics": out})
	}
}

func AnalyticsTimelineHandler(svc *analytics.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		days := queryInt(r, "days", 30)
		out, err := svc.Timeline(r.Context(), u.ID, days)
		if err != nil {
			log.Errorf("analytics: timeline for user %d: %v", u.ID, err)
			writeError(w, http.StatusInternalServerError, "could not load timeline")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": days, "timeline": out})
	}
}
