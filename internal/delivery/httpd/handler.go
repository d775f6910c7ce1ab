package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/service"
)

// ResolverFunc turns the selection carried by a run request into a resolver.
// A nil result means the pipeline's default resolver.
type ResolverFunc func(req models.StartRunRequest) service.ContextResolver

type Handler struct {
	pipeline    service.Pipeline
	exporter    service.ExportService
	resolverFor ResolverFunc
	logger      zerolog.Logger
}

func NewHandler(
	pipeline service.Pipeline,
	exporter service.ExportService,
	resolverFor ResolverFunc,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		pipeline:    pipeline,
		exporter:    exporter,
		resolverFor: resolverFor,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/runs", func(r chi.Router) {
			r.Post("/", h.StartRun)
			r.Get("/current", h.CurrentRun)
		})

		api.Get("/preview", h.Preview)

		api.Route("/report", func(r chi.Router) {
			r.Get("/", h.GetReport)
			r.Post("/publish", h.PublishReport)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	state := h.pipeline.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "submission-report",
		"phase":     state.Phase,
		"timestamp": time.Now().UTC(),
	})
}

// handleError maps the failure taxonomy onto status codes.
func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var cfgErr *errs.ConfigError

	switch {
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errs.IsEmptyData(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPDFDisabled), errors.Is(err, service.ErrNoPublisher):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errs.IsUpstream(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolQueryParam(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && value
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
