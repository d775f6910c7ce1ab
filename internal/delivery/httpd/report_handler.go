package httpd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/service"
)

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	doc, err := h.exporter.Build(r.Context(), format, getBoolQueryParam(r, "print"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	disposition := "inline"
	if doc.Format == service.FormatPDF || getBoolQueryParam(r, "download") {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write report body")
	}
}

func (h *Handler) PublishReport(w http.ResponseWriter, r *http.Request) {
	var req models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.exporter.Publish(r.Context(), req.Format, req.Print)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp)
}
