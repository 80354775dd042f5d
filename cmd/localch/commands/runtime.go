package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"localch-scraper/internal/config"
	"localch-scraper/internal/kafka"
	"localch-scraper/internal/logging"
	"localch-scraper/internal/metrics"
	"localch-scraper/internal/pipeline"
	"localch-scraper/internal/store"
)

// runtime is the configured environment shared by the scraping commands.
type runtime struct {
	cfg     config.Config
	log     zerolog.Logger
	deps    pipeline.Deps
	closers []func() error
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: logging.New(cfg.LogLevel, cmd.ErrOrStderr())}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.MetricsAddr != "" {
		metrics.StartServer(ctx, cfg.MetricsAddr, rt.log)
	}
	if cfg.KafkaBroker != "" {
		producer := kafka.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
		rt.deps.Publisher = producer
		rt.closers = append(rt.closers, producer.Close)
		rt.log.Info().Str("broker", cfg.KafkaBroker).Str("topic", cfg.KafkaTopic).Msg("publishing listings to kafka")
	}
	if cfg.RedisAddr != "" {
		statusStore := store.NewRedisStatusStore(cfg.RedisAddr, store.DefaultPrefix, cfg.StatusTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := statusStore.Ping(pingCtx)
		cancel()
		if err != nil {
			rt.log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, run status will not be recorded")
			_ = statusStore.Close()
		} else {
			rt.deps.Status = statusStore
			rt.closers = append(rt.closers, statusStore.Close)
		}
	}
	return rt, nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-listings") {
		cfg.MaxListings = maxListingsFlag
	}
	if flags.Changed("threads") {
		cfg.Threads = threadsFlag
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDirFlag
	}
}

func (rt *runtime) Close() {
	for _, closeFn := range rt.closers {
		if err := closeFn(); err != nil {
			rt.log.Warn().Err(err).Msg("close failed")
		}
	}
}
