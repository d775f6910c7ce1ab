package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/metrics"
	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/report"
	"github.com/RubachokBoss/submission-report/internal/service/integration"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is a point-in-time copy of the pipeline. Students is the last
// successfully built aggregate and survives later failed runs; DataRunID
// names the run that built it.
type State struct {
	RunID       string
	DataRunID   string
	Phase       Phase
	Serials     Serials
	Students    []models.StudentAggregate
	Summary     report.Summary
	LastError   error
	StartedAt   time.Time
	CompletedAt time.Time
}

func (s State) HasData() bool {
	return len(s.Students) > 0
}

type PipelineConfig struct {
	PageSize  int
	ChunkSize int
	MaxPages  int
	// Location reads submission timestamps that carry no zone.
	Location *time.Location
}

// Pipeline fetches group members and submissions, joins them and keeps the
// result for rendering. Only one run may be in flight at a time.
type Pipeline interface {
	// Run executes a fetch synchronously. A nil resolver uses the default one.
	Run(ctx context.Context, resolver ContextResolver) (State, error)
	// Start begins a fetch in the background and returns its run id.
	Start(ctx context.Context, resolver ContextResolver) (string, error)
	Wait()
	Snapshot() State
	Render(opts report.Options) (string, error)
}

type pipeline struct {
	client   integration.PlatformClient
	resolver ContextResolver
	cfg      PipelineConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu    sync.Mutex
	busy  bool
	state State
	wg    sync.WaitGroup
}

func NewPipeline(
	client integration.PlatformClient,
	resolver ContextResolver,
	cfg PipelineConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) Pipeline {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &pipeline{
		client:   client,
		resolver: resolver,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		state:    State{Phase: PhaseIdle},
	}
}

func (p *pipeline) Run(ctx context.Context, resolver ContextResolver) (State, error) {
	runID, err := p.begin()
	if err != nil {
		return p.Snapshot(), err
	}

	err = p.execute(ctx, runID, resolver)
	return p.Snapshot(), err
}

func (p *pipeline) Start(ctx context.Context, resolver ContextResolver) (string, error) {
	runID, err := p.begin()
	if err != nil {
		return "", err
	}

	// The run outlives the request that started it.
	runCtx := context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// execute records and logs the failure.
		_ = p.execute(runCtx, runID, resolver)
	}()

	return runID, nil
}

func (p *pipeline) Wait() {
	p.wg.Wait()
}

func (p *pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *pipeline) Render(opts report.Options) (string, error) {
	state := p.Snapshot()
	return report.Render(state.Students, opts)
}

func (p *pipeline) begin() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy {
		return "", errs.ErrRunInProgress
	}

	runID := uuid.New().String()
	p.busy = true
	p.state.RunID = runID
	p.state.Phase = PhaseRunning
	p.state.LastError = nil
	p.state.StartedAt = time.Now()
	p.state.CompletedAt = time.Time{}

	return runID, nil
}

func (p *pipeline) execute(ctx context.Context, runID string, resolver ContextResolver) error {
	log := p.logger.With().Str("run_id", runID).Logger()

	serials, students, err := p.fetch(ctx, log, resolver)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.busy = false
	p.state.CompletedAt = time.Now()
	if serials.GroupSerial != "" || serials.StructureSerial != "" {
		p.state.Serials = serials
	}

	if err != nil {
		p.state.Phase = PhaseFailed
		p.state.LastError = err
		p.metrics.ObserveRun(string(PhaseFailed))
		log.Error().Err(err).Bool("has_previous_data", p.state.HasData()).Msg("Run failed")
		return err
	}

	p.state.Phase = PhaseSucceeded
	p.state.DataRunID = runID
	p.state.Students = students
	p.state.Summary = report.Summarize(students)
	p.metrics.ObserveRun(string(PhaseSucceeded))

	log.Info().
		Int("students", p.state.Summary.Students).
		Int("submissions", p.state.Summary.Submissions).
		Int("files", p.state.Summary.Files).
		Msg("Run completed")

	return nil
}

func (p *pipeline) fetch(ctx context.Context, log zerolog.Logger, resolver ContextResolver) (Serials, []models.StudentAggregate, error) {
	if resolver == nil {
		resolver = p.resolver
	}
	if resolver == nil {
		return Serials{}, nil, &errs.ConfigError{Message: "no context resolver configured"}
	}

	serials, err := resolver.Resolve(ctx)
	if err != nil {
		return Serials{}, nil, fmt.Errorf("failed to resolve serials: %w", err)
	}
	if err := serials.Validate(); err != nil {
		return serials, nil, err
	}

	log.Info().
		Str("group_serial", serials.GroupSerial).
		Str("structure_serial", serials.StructureSerial).
		Msg("Fetching user group data")

	groups, err := FetchAllPages(ctx, func(ctx context.Context, page, pageSize int) (Page[models.GroupMember], error) {
		resp, err := p.client.ListUserGroups(ctx, serials.GroupSerial, page, pageSize)
		if err != nil {
			return Page[models.GroupMember]{}, err
		}
		return Page[models.GroupMember]{Items: resp.Members, TotalPages: resp.TotalPages}, nil
	}, p.cfg.PageSize, p.cfg.MaxPages)
	if err != nil {
		return serials, nil, fmt.Errorf("failed to fetch user groups: %w", err)
	}
	if len(groups) == 0 {
		return serials, nil, errs.NewEmptyData("No users found in the specified group.")
	}

	userSerials := make([]string, 0, len(groups))
	for _, member := range groups {
		if member.UserSerial != "" {
			userSerials = append(userSerials, member.UserSerial)
		}
	}

	log.Info().Int("users", len(groups)).Msg("Fetched users, fetching submissions")

	submissions, err := FetchByKeys(ctx, userSerials, p.cfg.ChunkSize, func(ctx context.Context, keys []string) ([]models.SubmissionRecord, error) {
		return p.client.ListUserSubmissions(ctx, serials.StructureSerial, keys)
	})
	if err != nil {
		return serials, nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	students := AggregateIn(groups, submissions, p.cfg.Location)
	if len(students) == 0 {
		return serials, nil, errs.NewEmptyData("No submissions found for this selection.")
	}

	return serials, students, nil
}
