package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/config"
	"github.com/RubachokBoss/submission-report/internal/metrics"
	"github.com/RubachokBoss/submission-report/internal/publisher"
	"github.com/RubachokBoss/submission-report/internal/service"
	"github.com/RubachokBoss/submission-report/internal/service/integration"
)

// Components is the wired report pipeline shared by the HTTP server and the
// CLI commands.
type Components struct {
	Pipeline service.Pipeline
	Exporter service.ExportService
	Registry *prometheus.Registry

	page     service.PageResolver
	defaults service.ContextResolver
	notifier publisher.Notifier
	logger   zerolog.Logger
}

type BuildOptions struct {
	// Upload selects the MinIO publisher even when storage.enabled is false.
	Upload bool
	// Notify connects the RabbitMQ notifier when rabbitmq.enabled is set.
	Notify bool
}

func Build(cfg *config.Config, log zerolog.Logger, opts BuildOptions) (*Components, error) {
	location, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	transport := integration.NewHTTPTransport(integration.TransportOptions{
		Tenant:   cfg.Platform.Tenant,
		Country:  cfg.Platform.Country,
		Platform: cfg.Platform.PlatformName,
		Cookie:   cfg.Platform.Cookie,
		Timeout:  cfg.Platform.Timeout,
	}, log)
	client := integration.NewPlatformClient(cfg.Platform.BaseURL, cfg.Platform.Tenant, transport, m, log)

	page := service.PageResolver{
		PageURL:     cfg.Context.PageURL,
		AllowedHost: cfg.Platform.AllowedHost,
		Transport:   transport,
		Logger:      log,
	}
	defaults := service.StaticResolver{
		GroupSerial:     cfg.Context.GroupSerial,
		StructureSerial: cfg.Context.StructureSerial,
	}

	pipeline := service.NewPipeline(client, service.ChainResolver{Detect: page, Defaults: defaults}, service.PipelineConfig{
		PageSize:  cfg.Platform.PageSize,
		ChunkSize: cfg.Platform.ChunkSize,
		MaxPages:  cfg.Platform.MaxPages,
		Location:  location,
	}, m, log)

	var converter service.PDFConverter
	if cfg.PDF.Enabled {
		converter = publisher.NewRodConverter(publisher.PDFConfig{
			ChromeBin:   cfg.PDF.ChromeBin,
			DebuggerURL: cfg.PDF.DebuggerURL,
			Timeout:     cfg.PDF.Timeout,
		}, log)
	}

	var pub service.Publisher
	if cfg.Storage.Enabled || opts.Upload {
		minioPublisher, err := publisher.NewMinIOPublisher(publisher.MinIOConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.BucketName,
			Region:    cfg.Storage.Region,
			Prefix:    cfg.Storage.Prefix,
			UseSSL:    cfg.Storage.UseSSL,
		}, log)
		if err != nil {
			return nil, err
		}
		pub = minioPublisher
	} else {
		pub = publisher.NewFilePublisher(cfg.Report.OutputDir, log)
	}

	c := &Components{
		Pipeline: pipeline,
		Registry: registry,
		page:     page,
		defaults: defaults,
		logger:   log,
	}

	var notifier service.ExportNotifier
	if cfg.RabbitMQ.Enabled && opts.Notify {
		n, err := publisher.NewRabbitMQNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey, log)
		if err != nil {
			// Exports still work without the event stream.
			log.Error().Err(err).Msg("Failed to create RabbitMQ notifier")
		} else {
			c.notifier = n
			notifier = n
		}
	}

	c.Exporter = service.NewExportService(pipeline, converter, pub, notifier, service.ExportConfig{
		Title:      cfg.Report.Title,
		FilePrefix: cfg.Report.FilePrefix,
		Location:   location,
	}, m, log)

	return c, nil
}

// ResolverFor returns the resolver for an explicit selection, or nil to use
// the configured one.
func (c *Components) ResolverFor(group, structure, pageURL string) service.ContextResolver {
	return service.SelectionResolver(group, structure, pageURL, c.page, c.defaults)
}

func (c *Components) Close() {
	c.Pipeline.Wait()
	if c.notifier != nil {
		if err := c.notifier.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ notifier")
		}
	}
}
