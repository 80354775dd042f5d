package crawler

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"localch-scraper/internal/fetch"
	"localch-scraper/internal/localch"
	"localch-scraper/internal/metrics"
)

// ErrSearchDisallowed is returned when robots.txt forbids the search path.
var ErrSearchDisallowed = errors.New("robots.txt disallows the search path")

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	BaseURL  string
	SiteRoot string

	// Politeness delay between page requests, uniform in [PageDelayMin, PageDelayMax).
	PageDelayMin time.Duration
	PageDelayMax time.Duration

	// EmptyPageLimit stops pagination after that many consecutive pages add no
	// new URL; 0 disables the check. MaxPages caps the page number; 0 disables it.
	EmptyPageLimit int
	MaxPages       int

	Robots *localch.RobotsRules
	Sleep  fetch.SleepFunc
}

// Collector walks the paginated search results for a keyword one page at a time.
type Collector struct {
	fetcher PageFetcher
	opts    CollectorOptions
	log     zerolog.Logger
}

// NewCollector builds a Collector. A nil Sleep waits on a timer.
func NewCollector(fetcher PageFetcher, opts CollectorOptions, log zerolog.Logger) *Collector {
	if opts.Sleep == nil {
		opts.Sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}
	return &Collector{fetcher: fetcher, opts: opts, log: log}
}

// Collect returns up to maxCount unique listing URLs in first-discovered order.
// A page that cannot be fetched ends collection early with what was gathered
// so far and a nil error; only cancellation and a robots.txt refusal are errors.
func (c *Collector) Collect(ctx context.Context, keyword string, maxCount int) ([]string, error) {
	urls := newURLSet()
	if maxCount < 1 {
		return urls.Items(0), nil
	}

	emptyStreak := 0
	for page := 1; urls.Len() < maxCount; page++ {
		if c.opts.MaxPages > 0 && page > c.opts.MaxPages {
			c.log.Info().Int("max_pages", c.opts.MaxPages).Msg("page cap reached, stopping pagination")
			break
		}
		if page > 1 {
			if err := c.opts.Sleep(ctx, c.pageDelay()); err != nil {
				return urls.Items(maxCount), err
			}
		}

		searchURL := localch.SearchURL(c.opts.BaseURL, keyword, page)
		if !c.opts.Robots.AllowedURL(searchURL) {
			return urls.Items(maxCount), ErrSearchDisallowed
		}
		body, err := c.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			if ctx.Err() != nil {
				return urls.Items(maxCount), ctx.Err()
			}
			c.log.Warn().Err(err).Int("page", page).Msg("search page failed, stopping pagination")
			break
		}
		metrics.PageFetched()

		links, err := localch.ExtractListingLinks(body, c.opts.SiteRoot)
		if err != nil {
			c.log.Warn().Err(err).Int("page", page).Msg("could not read search page")
		}
		added := 0
		for _, link := range links {
			if !c.opts.Robots.AllowedURL(link) {
				continue
			}
			if urls.Add(link) {
				added++
				if urls.Len() >= maxCount {
					break
				}
			}
		}
		metrics.URLsCollected(added)
		c.log.Debug().Int("page", page).Int("links", len(links)).Int("new", added).Int("total", urls.Len()).Msg("search page scanned")

		if added > 0 {
			emptyStreak = 0
			continue
		}
		emptyStreak++
		if c.opts.EmptyPageLimit > 0 && emptyStreak >= c.opts.EmptyPageLimit {
			c.log.Info().Int("page", page).Msg("no new listings on page, stopping pagination")
			break
		}
	}
	return urls.Items(maxCount), nil
}

func (c *Collector) pageDelay() time.Duration {
	lo, hi := c.opts.PageDelayMin, c.opts.PageDelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rand.Int64N(int64(hi-lo)))
}
