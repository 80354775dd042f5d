package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"localch-scraper/internal/logging"
)

// Config holds the keywords to submit to the API.
type Config struct {
	Keywords []string `json:"keywords"`
}

var errNoKeywords = errors.New("config has no keywords")

func main() {
	var (
		configPath  string
		apiBase     string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:           "loadgen",
		Short:         "Submits every keyword in a JSON file to the scrape API.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("info", cmd.ErrOrStderr())
			return run(cmd.Context(), configPath, apiBase, concurrency, nil, log)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "keywords.json", "Path to JSON config file with keywords")
	cmd.Flags().StringVar(&apiBase, "api", "http://localhost:8080", "API base URL")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Maximum in-flight submissions")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads config from configPath and submits all keywords to the API with at most
// concurrency requests in flight. If client is nil, a default HTTP client (30s timeout) is used.
func run(ctx context.Context, configPath, apiBase string, concurrency int, client *http.Client, log zerolog.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	baseURL, err := url.Parse(apiBase)
	if err != nil {
		return err
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var accepted int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, keyword := range cfg.Keywords {
		g.Go(func() error {
			if submitKeyword(gctx, client, baseURL, keyword, log.With().Int("idx", i).Logger()) {
				atomic.AddInt64(&accepted, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int64("accepted", accepted).Int("total", len(cfg.Keywords)).Msg("submitted keywords")
	return nil
}

// loadConfig reads and parses the JSON config file.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	keywords := cfg.Keywords[:0]
	for _, k := range cfg.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	cfg.Keywords = keywords
	if len(cfg.Keywords) == 0 {
		return cfg, errNoKeywords
	}
	return cfg, nil
}

// submitKeyword posts one keyword and reports whether the API accepted it.
func submitKeyword(ctx context.Context, client *http.Client, base *url.URL, keyword string, log zerolog.Logger) bool {
	u := *base
	u.Path = "/scrape"
	u.RawQuery = url.Values{"keyword": {keyword}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		log.Warn().Err(err).Str("keyword", keyword).Msg("build request")
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("keyword", keyword).Msg("submit failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		log.Warn().Int("status", resp.StatusCode).Str("keyword", keyword).Msg("submit rejected")
		return false
	}
	log.Info().Str("keyword", keyword).Msg("accepted")
	return true
}
