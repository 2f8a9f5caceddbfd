package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/auth"
	"github.com/neuropulse/neuropulse-server/internal/mcq"
	"github.com/neuropulse/neuropulse-server/internal/progress"
)

// GetProgressHandler serves the signed-in user's dashboard aggregate.
func GetProgressHandler(svc *progress.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		out, err := svc.Get(r.Context(), u.ID)
		if err != nil {
			log.Errorf("progress: get for user %d: %v", u.ID, err)
			writeError(w, http.StatusInternalServerError, "could not load progress")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SaveProgressHandler records an answer (and optionally the current page)
// for the signed-in user.
func SaveProgressHandler(svc *progress.Service, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())

		var req struct {
			MCQID       string  `json:"mcq_id"`
			Answer      *string `json:"answer"`
			IsCorrect   *bool   `json:"is_correct"`
			CurrentPage *int    `json:"current_page"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if !mcq.IsWellFormedID(req.MCQID) {
			writeError(w, http.StatusBadRequest, "invalid mcq_id: "+req.MCQID)
			return
		}

		ans, state, err := svc.Save(r.Context(), progress.SaveInput{
			UserID:      u.ID,
			MCQID:       req.MCQID,
			Answer:      req.Answer,
			IsCorrect:   req.IsCorrect,
			CurrentPage: req.CurrentPage,
		})
		if err != nil {
			log.Errorf("progress: save for user %d mcq %s: %v", u.ID, req.MCQID, err)
			writeError(w, http.StatusInternalServerError, "could not save progress")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "answer": ans, "state": state})
	}
}

// GetAnswerHandler serves the user's answer for one MCQ; null when unseen.
func GetAnswerHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		mcqID := chi.URLParam(r, "mcqID")
		if !mcq.IsWellFormedID(mcqID) {
			writeError(w, http.StatusBadRequest, "invalid mcq_id: "+mcqID)
			return
		}

		ans, err := svc.GetAnswer(r.Context(), u.ID, mcqID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not load answer")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"answer": ans})
	}
}

// GetStateHandler serves the user's resume state; null before the first save.
func GetStateHandler(svc *progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		st, err := svc.GetState(r.Context(), u.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not load state")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": st})
	}
}
