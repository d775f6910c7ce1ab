package app

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/config"
	"github.com/RubachokBoss/submission-report/internal/delivery/httpd"
	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/service"
)

type App struct {
	server     *http.Server
	components *Components
	logger     zerolog.Logger
	config     *config.Config
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	components, err := Build(cfg, log, BuildOptions{Notify: true})
	if err != nil {
		return nil, err
	}

	handler := httpd.NewHandler(
		components.Pipeline,
		components.Exporter,
		func(req models.StartRunRequest) service.ContextResolver {
			return components.ResolverFor(req.GroupSerial, req.StructureSerial, req.PageURL)
		},
		log,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      newRouter(cfg, handler, components, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:     server,
		components: components,
		logger:     log,
		config:     cfg,
	}, nil
}

func newRouter(cfg *config.Config, handler *httpd.Handler, components *Components, log zerolog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpd.RequestLogger(log))
	router.Use(httpd.Recovery(log))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(components.Registry, promhttp.HandlerOpts{}))
	handler.RegisterRoutes(router)

	return router
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting submission report service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down submission report service...")

	err := a.server.Shutdown(ctx)
	a.components.Close()
	return err
}
