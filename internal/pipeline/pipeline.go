package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"localch-scraper/internal/config"
	"localch-scraper/internal/crawler"
	"localch-scraper/internal/fetch"
	"localch-scraper/internal/kafka"
	"localch-scraper/internal/localch"
	"localch-scraper/internal/models"
	"localch-scraper/internal/output"
	"localch-scraper/internal/store"
)

// ErrEmptyKeyword is returned when the operator enters nothing.
var ErrEmptyKeyword = errors.New("search keyword is empty")

// Deps are the optional collaborators of a run. Nil fields are disabled.
type Deps struct {
	Publisher kafka.ListingPublisher
	Status    store.StatusStore
	Sleep     fetch.SleepFunc
}

// Pipeline wires the fetcher, collector, dispatcher and writer for one config.
type Pipeline struct {
	cfg     config.Config
	fetcher *fetch.Fetcher
	robots  *fetch.Fetcher
	writer  *output.Writer
	deps    Deps
	log     zerolog.Logger
}

// New builds a Pipeline. All fetches share a single HTTP client.
func New(cfg config.Config, deps Deps, log zerolog.Logger) *Pipeline {
	client := fetch.NewHTTPClient(fetch.ClientOptions{
		Timeout:   cfg.RequestTimeout,
		ProxyURL:  cfg.ProxyURL,
		ProxyPool: cfg.ProxyPool,
		Hostname:  hostname(),
	}, log)
	opts := fetch.Options{
		Headers:  cfg.Headers,
		Attempts: cfg.Retries,
		Backoff:  fetch.Backoff{Base: cfg.RetryBase, JitterMax: cfg.JitterMax},
		Sleep:    deps.Sleep,
	}
	fetcher := fetch.New(client, opts, log)
	// robots.txt fetches give up at once on a 4xx answer.
	opts.Retryable = fetch.RetryServerErrors
	robotsFetcher := fetch.New(client, opts, log)
	return &Pipeline{
		cfg:     cfg,
		fetcher: fetcher,
		robots:  robotsFetcher,
		writer:  output.NewWriter(cfg.OutputDir),
		deps:    deps,
		log:     log,
	}
}

// Run scrapes keyword end to end and writes the result file. Fetch failures
// only shrink the result; the returned error is for cancellation, robots.txt
// refusal and filesystem failures.
func (p *Pipeline) Run(ctx context.Context, keyword string) (models.RunSummary, error) {
	return p.RunWithID(ctx, uuid.NewString(), keyword)
}

// RunWithID is Run under a caller-chosen run id, for callers that hand the id
// out before the run starts.
func (p *Pipeline) RunWithID(ctx context.Context, runID, keyword string) (models.RunSummary, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return models.RunSummary{}, ErrEmptyKeyword
	}
	status := models.RunStatus{RunID: runID, Keyword: keyword}
	log := p.log.With().Str("run_id", status.RunID).Str("keyword", keyword).Logger()
	ctx = log.WithContext(ctx)

	summary, err := p.run(ctx, &status, log)
	if err != nil {
		status.Error = err.Error()
		p.report(ctx, &status, models.StageFailed)
		return summary, err
	}
	p.report(ctx, &status, models.StageDone)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, status *models.RunStatus, log zerolog.Logger) (models.RunSummary, error) {
	summary := models.RunSummary{RunID: status.RunID, Keyword: status.Keyword}

	var robots *localch.RobotsRules
	if p.cfg.RespectRobots {
		rules, err := localch.FetchRobots(ctx, p.robots, p.cfg.SiteRoot, p.cfg.Headers["User-Agent"])
		if err != nil {
			log.Warn().Err(err).Msg("robots.txt fetch failed, allowing all paths")
		} else {
			robots = rules
		}
	}

	p.report(ctx, status, models.StageCollecting)
	collector := crawler.NewCollector(p.fetcher, crawler.CollectorOptions{
		BaseURL:        p.cfg.BaseURL,
		SiteRoot:       p.cfg.SiteRoot,
		PageDelayMin:   p.cfg.PageDelayMin,
		PageDelayMax:   p.cfg.PageDelayMax,
		EmptyPageLimit: p.cfg.EmptyPageLimit,
		MaxPages:       p.cfg.MaxPages,
		Robots:         robots,
		Sleep:          p.deps.Sleep,
	}, log)
	urls, err := collector.Collect(ctx, status.Keyword, p.cfg.MaxListings)
	if err != nil {
		return summary, fmt.Errorf("collect listing URLs: %w", err)
	}
	summary.URLs = len(urls)
	status.URLsCollected = len(urls)
	log.Info().Int("count", len(urls)).Msg("collected listing URLs")

	p.report(ctx, status, models.StageScraping)
	dispatcher := crawler.NewDispatcher(p.fetcher, p.cfg.Threads, p.sink(status), log)
	records := dispatcher.DispatchAll(ctx, urls)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	summary.Records = len(records)
	status.RecordsScraped = len(records)
	log.Info().Int("count", len(records)).Msg("scraped listing details")

	p.report(ctx, status, models.StageWriting)
	path, err := p.writer.Write(records, status.Keyword)
	if err != nil {
		return summary, err
	}
	summary.OutputPath = path
	status.OutputPath = path
	log.Info().Int("count", len(records)).Str("path", path).Msg("saved listings")
	return summary, nil
}

func (p *Pipeline) sink(status *models.RunStatus) crawler.RecordSink {
	if p.deps.Publisher == nil {
		return nil
	}
	runID, keyword := status.RunID, status.Keyword
	return crawler.SinkFunc(func(ctx context.Context, record models.ListingRecord) error {
		return p.deps.Publisher.WriteListing(ctx, runID, keyword, record)
	})
}

// report pushes a stage change to the status store. Failures are logged only.
func (p *Pipeline) report(ctx context.Context, status *models.RunStatus, stage models.RunStage) {
	status.Stage = stage
	status.UpdatedAt = time.Now().UTC()
	if p.deps.Status == nil {
		return
	}
	// The run's own context may already be cancelled when reporting failure.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.deps.Status.SetStatus(writeCtx, *status); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("stage", string(stage)).Msg("failed to record run status")
	}
}

func hostname() string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, _ := os.Hostname()
	return h
}
