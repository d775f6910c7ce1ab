package httpd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/report"
	"github.com/RubachokBoss/submission-report/internal/service"
)

// StartRun kicks off a fetch in the background and answers 202 with the run
// id. With ?wait=true the fetch runs inline and the final state is returned.
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req models.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var resolver service.ContextResolver
	if h.resolverFor != nil {
		resolver = h.resolverFor(req)
	}

	if getBoolQueryParam(r, "wait") {
		state, err := h.pipeline.Run(r.Context(), resolver)
		setRunID(w, state.RunID)
		if err != nil {
			h.handleError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, toRunResponse(state))
		return
	}

	runID, err := h.pipeline.Start(r.Context(), resolver)
	if err != nil {
		h.handleError(w, err)
		return
	}

	setRunID(w, runID)
	writeSuccess(w, http.StatusAccepted, toRunResponse(h.pipeline.Snapshot()))
}

func (h *Handler) CurrentRun(w http.ResponseWriter, r *http.Request) {
	state := h.pipeline.Snapshot()
	setRunID(w, state.RunID)
	writeSuccess(w, http.StatusOK, toRunResponse(state))
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	state := h.pipeline.Snapshot()
	if !state.HasData() {
		writeError(w, http.StatusNotFound, "No report data yet; start a run first.")
		return
	}

	limit := getIntQueryParam(r, "limit", report.DefaultPreviewRows)
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"summary": state.Summary,
		"rows":    report.Preview(state.Students, limit),
	})
}

func setRunID(w http.ResponseWriter, runID string) {
	if runID != "" {
		w.Header().Set(RunIDHeader, runID)
	}
}

func toRunResponse(state service.State) models.RunResponse {
	resp := models.RunResponse{
		RunID:       state.RunID,
		DataRunID:   state.DataRunID,
		Phase:       string(state.Phase),
		GroupSerial: state.Serials.GroupSerial,
		Structure:   state.Serials.StructureSerial,
		Students:    state.Summary.Students,
		Submissions: state.Summary.Submissions,
		Files:       state.Summary.Files,
		HasData:     state.HasData(),
	}
	if state.LastError != nil {
		resp.Error = state.LastError.Error()
	}
	if !state.StartedAt.IsZero() {
		started := state.StartedAt.UTC()
		resp.StartedAt = &started
	}
	if !state.CompletedAt.IsZero() {
		completed := state.CompletedAt.UTC()
		resp.CompletedAt = &completed
	}
	return resp
}
