package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"localch-scraper/common"
	"localch-scraper/internal/config"
	"localch-scraper/internal/kafka"
	"localch-scraper/internal/logging"
	"localch-scraper/internal/metrics"
	"localch-scraper/internal/models"
	"localch-scraper/internal/pipeline"
	"localch-scraper/internal/store"
)

// scrapeRunner is satisfied by *pipeline.Pipeline.
type scrapeRunner interface {
	RunWithID(ctx context.Context, runID, keyword string) (models.RunSummary, error)
}

type server struct {
	runner scrapeRunner
	store  store.StatusStore
	log    zerolog.Logger

	// runs are detached from the request and bound to the server's lifetime.
	ctx   context.Context
	slots chan struct{}
	wg    sync.WaitGroup
}

func newServer(ctx context.Context, runner scrapeRunner, store store.StatusStore, maxRuns int, log zerolog.Logger) *server {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &server{
		runner: runner,
		store:  store,
		log:    log,
		ctx:    ctx,
		slots:  make(chan struct{}, maxRuns),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	statusStore := store.NewRedisStatusStore(redisAddr, store.DefaultPrefix, cfg.StatusTTL)
	defer func() {
		if err := statusStore.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close status store")
		}
	}()

	deps := pipeline.Deps{Status: statusStore}
	if cfg.KafkaBroker != "" {
		prod := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		defer func() {
			if err := prod.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close producer")
			}
		}()
		deps.Publisher = prod
	}

	srv := newServer(ctx, pipeline.New(cfg, deps, log), statusStore, common.EnvInt("API_MAX_RUNS", 1), log)

	mux := http.NewServeMux()
	mux.HandleFunc("/scrape", srv.handleScrape)
	mux.HandleFunc("/runs/", srv.handleRunStatus)
	mux.HandleFunc("/metrics", metrics.Handler)

	addr := common.GetEnv("API_ADDR", ":8080")
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("api listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("api server failed")
	}
	srv.wg.Wait()
}

// handleScrape starts a scrape run in the background.
//
// Method: POST
// Path:   /scrape?keyword=...
// Example:
//
//	curl -X POST "http://localhost:8080/scrape?keyword=bakery"
func (s *server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		http.Error(w, "missing keyword", http.StatusBadRequest)
		return
	}

	select {
	case s.slots <- struct{}{}:
	default:
		http.Error(w, "too many runs in progress", http.StatusTooManyRequests)
		return
	}

	status := models.RunStatus{
		RunID:     uuid.NewString(),
		Keyword:   keyword,
		Stage:     models.StageQueued,
		UpdatedAt: time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.store.SetStatus(ctx, status); err != nil {
		<-s.slots
		http.Error(w, "failed to persist status", http.StatusBadGateway)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.slots }()
		if _, err := s.runner.RunWithID(s.ctx, status.RunID, keyword); err != nil {
			s.log.Error().Err(err).Str("run_id", status.RunID).Msg("scrape run failed")
		}
	}()

	writeJSON(w, status, http.StatusAccepted)
}

// handleRunStatus returns the recorded progress of a run.
//
// Method: GET
// Path:   /runs/{runID}
func (s *server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if runID == "" {
		http.Error(w, "missing run id", http.StatusBadRequest)
		return
	}

	status, ok, err := s.store.GetStatus(r.Context(), runID)
	if err != nil {
		http.Error(w, "failed to load status", http.StatusBadGateway)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, status, http.StatusOK)
}

func writeJSON(w http.ResponseWriter, payload any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
