package http

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/neuropulse/neuropulse-server/internal/mcq"
)

const (
	batchLimitDefault = 10
	batchLimitMax     = 200
)

// PublishOneHandler promotes a single staged MCQ by id.
func PublishOneHandler(pub *mcq.Publisher, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MCQID string `json:"mcq_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		mcqID := req.MCQID
		if !mcq.IsWellFormedID(mcqID) {
			writeError(w, http.StatusBadRequest, "invalid mcq_id: "+mcqID)
			return
		}

		res, err := pub.PublishOne(r.Context(), mcqID)
		if err != nil {
			log.Errorf("publish %s: %v", mcqID, err)
			writeError(w, http.StatusInternalServerError, "publish failed: "+err.Error())
			return
		}
		if !res.OK {
			writeJSON(w, http.StatusUnprocessableEntity, res)
			return
		}
		log.Infof("published %s (commit %s)", mcqID, res.CommitHash)
		writeJSON(w, http.StatusOK, res)
	}
}

// PublishBatchHandler publishes every ready staged MCQ, newest first, up to
// limit. A real run must carry confirm:"PUBLISH" so a bare POST can never
// mutate the bank.
func PublishBatchHandler(pub *mcq.Publisher, log *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Limit   int    `json:"limit"`
			DryRun  bool   `json:"dryRun"`
			Confirm string `json:"confirm"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		limit := req.Limit
		if limit <= 0 {
			limit = batchLimitDefault
		}
		if limit > batchLimitMax {
			limit = batchLimitMax
		}

		if !req.DryRun && req.Confirm != "PUBLISH" {
			writeError(w, http.StatusBadRequest, `confirm must be "PUBLISH" for a non-dry run`)
			return
		}

		res, err := pub.PublishBatch(r.Context(), mcq.BatchOptions{Limit: limit, DryRun: req.DryRun})
		if err != nil {
			log.Errorf("publish batch: %v", err)
			writeError(w, http.StatusInternalServerError, "batch publish failed: "+err.Error())
			return
		}
		if !req.DryRun {
			log.Infof("batch %s published %d of %d ready (%d errors)",
				res.PublishedBatch, res.PublishedCount, res.FoundReady, len(res.Errors))
		}
		writeJSON(w, http.StatusOK, res)
	}
}
