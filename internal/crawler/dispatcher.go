package crawler

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"localch-scraper/internal/localch"
	"localch-scraper/internal/metrics"
	"localch-scraper/internal/models"
)

// ParseFunc turns a fetched detail page into a record.
type ParseFunc func(body []byte, url string) models.ListingRecord

// Dispatcher fetches and parses listing pages on a fixed pool of workers that
// share one fetcher.
type Dispatcher struct {
	fetcher PageFetcher
	workers int
	parse   ParseFunc
	sink    RecordSink
	log     zerolog.Logger
}

// NewDispatcher builds a Dispatcher with the given pool size. sink may be nil.
func NewDispatcher(fetcher PageFetcher, workers int, sink RecordSink, log zerolog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		fetcher: fetcher,
		workers: workers,
		parse:   localch.ParseListing,
		sink:    sink,
		log:     log,
	}
}

// DispatchAll scrapes every URL and returns the records in completion order.
// URLs whose fetch fails are dropped without a placeholder record. Each worker
// publishes its own records to the sink, so a slow sink holds back only that worker.
func (d *Dispatcher) DispatchAll(ctx context.Context, urls []string) []models.ListingRecord {
	if len(urls) == 0 {
		return nil
	}
	workers := min(d.workers, len(urls))

	jobs := make(chan string)
	results := make(chan models.ListingRecord, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, u := range urls {
			select {
			case jobs <- u:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for u := range jobs {
				record, ok := d.scrape(gctx, u)
				if !ok {
					continue
				}
				d.publish(gctx, record)
				select {
				case results <- record:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		if err := g.Wait(); err != nil {
			d.log.Warn().Err(err).Msg("listing scrape interrupted")
		}
		close(results)
	}()

	records := make([]models.ListingRecord, 0, len(urls))
	for record := range results {
		records = append(records, record)
		if len(records)%10 == 0 {
			d.log.Info().Int("done", len(records)).Int("total", len(urls)).Msg("scraping listings")
		}
	}
	return records
}

func (d *Dispatcher) scrape(ctx context.Context, url string) (models.ListingRecord, bool) {
	metrics.WorkerBusy(1)
	defer metrics.WorkerBusy(-1)

	body, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.ListingDropped()
		d.log.Warn().Err(err).Str("url", url).Msg("skipping listing")
		return models.ListingRecord{}, false
	}
	record := d.parse(body, url)
	metrics.ListingScraped()
	d.log.Debug().Str("url", url).Str("name", record.Name).Msg("listing scraped")
	return record, true
}

func (d *Dispatcher) publish(ctx context.Context, record models.ListingRecord) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Publish(ctx, record); err != nil {
		metrics.PublishError()
		d.log.Warn().Err(err).Str("url", record.URL).Msg("failed to publish listing")
	}
}
