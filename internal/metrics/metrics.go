package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Fetch counters. attempts counts every HTTP try; retries counts tries after the first;
	// exhausted counts URLs that ran out of attempts.
	fetchAttemptsTotal  uint64
	fetchRetriesTotal   uint64
	fetchExhaustedTotal uint64
	rateLimitHitsTotal  uint64 // HTTP 429 responses

	// Pipeline counters.
	pagesFetchedTotal    uint64
	urlsCollectedTotal   uint64
	listingsScrapedTotal uint64
	listingsDroppedTotal uint64
	publishErrorsTotal   uint64
	workersBusy          int64 // gauge

	// Fetch latency histogram (seconds); last slot of counts is +Inf.
	fetchLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 15}
	fetchLatencyCounts  = make([]uint64, len(fetchLatencyBuckets)+1)
	fetchLatencySumNs   uint64
	fetchLatencyCount   uint64
)

// FetchAttempt records one HTTP try. retry is true for every try after the first.
func FetchAttempt(duration time.Duration, status int, retry bool) {
	atomic.AddUint64(&fetchAttemptsTotal, 1)
	if retry {
		atomic.AddUint64(&fetchRetriesTotal, 1)
	}
	if status == http.StatusTooManyRequests {
		atomic.AddUint64(&rateLimitHitsTotal, 1)
	}
	observeFetchLatency(duration)
}

// FetchExhausted records a URL that failed every attempt.
func FetchExhausted() { atomic.AddUint64(&fetchExhaustedTotal, 1) }

// PageFetched records one successfully fetched search page.
func PageFetched() { atomic.AddUint64(&pagesFetchedTotal, 1) }

// URLsCollected adds n unique listing URLs.
func URLsCollected(n int) { atomic.AddUint64(&urlsCollectedTotal, uint64(n)) }

func ListingScraped() { atomic.AddUint64(&listingsScrapedTotal, 1) }

func ListingDropped() { atomic.AddUint64(&listingsDroppedTotal, 1) }

func PublishError() { atomic.AddUint64(&publishErrorsTotal, 1) }

// WorkerBusy moves the busy-worker gauge by delta.
func WorkerBusy(delta int64) { atomic.AddInt64(&workersBusy, delta) }

func FetchAttempts() uint64 { return atomic.LoadUint64(&fetchAttemptsTotal) }

func FetchExhaustedCount() uint64 { return atomic.LoadUint64(&fetchExhaustedTotal) }

func ListingsScraped() uint64 { return atomic.LoadUint64(&listingsScrapedTotal) }

func ListingsDropped() uint64 { return atomic.LoadUint64(&listingsDroppedTotal) }

// Reset zeroes every metric. Tests only.
func Reset() {
	for _, c := range []*uint64{
		&fetchAttemptsTotal, &fetchRetriesTotal, &fetchExhaustedTotal, &rateLimitHitsTotal,
		&pagesFetchedTotal, &urlsCollectedTotal, &listingsScrapedTotal, &listingsDroppedTotal,
		&publishErrorsTotal, &fetchLatencySumNs, &fetchLatencyCount,
	} {
		atomic.StoreUint64(c, 0)
	}
	atomic.StoreInt64(&workersBusy, 0)
	for i := range fetchLatencyCounts {
		atomic.StoreUint64(&fetchLatencyCounts[i], 0)
	}
}

// StartServer serves /metrics on addr until ctx is cancelled.
func StartServer(ctx context.Context, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", Handler)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics shutdown error")
		}
	}()

	go func() {
		log.Debug().Str("addr", addr).Msg("metrics listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// Handler renders all metrics in the Prometheus text format.
func Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var sb strings.Builder
	sb.WriteString("localch_scraper_up 1\n")
	writeCounter(&sb, "localch_fetch_attempts_total", "HTTP attempts including retries.", atomic.LoadUint64(&fetchAttemptsTotal))
	writeCounter(&sb, "localch_fetch_retries_total", "HTTP attempts after the first for a URL.", atomic.LoadUint64(&fetchRetriesTotal))
	writeCounter(&sb, "localch_fetch_exhausted_total", "URLs that failed every attempt.", atomic.LoadUint64(&fetchExhaustedTotal))
	writeCounter(&sb, "localch_rate_limit_hits_total", "HTTP 429 responses.", atomic.LoadUint64(&rateLimitHitsTotal))
	writeCounter(&sb, "localch_pages_fetched_total", "Search result pages fetched.", atomic.LoadUint64(&pagesFetchedTotal))
	writeCounter(&sb, "localch_urls_collected_total", "Unique listing URLs collected.", atomic.LoadUint64(&urlsCollectedTotal))
	writeCounter(&sb, "localch_listings_scraped_total", "Listing pages parsed into records.", atomic.LoadUint64(&listingsScrapedTotal))
	writeCounter(&sb, "localch_listings_dropped_total", "Listing URLs dropped after fetch failure.", atomic.LoadUint64(&listingsDroppedTotal))
	writeCounter(&sb, "localch_publish_errors_total", "Listing events that failed to publish.", atomic.LoadUint64(&publishErrorsTotal))
	sb.WriteString("# TYPE localch_workers_busy gauge\n")
	sb.WriteString(fmt.Sprintf("localch_workers_busy %d\n", atomic.LoadInt64(&workersBusy)))

	sb.WriteString("# HELP localch_fetch_latency_seconds Per-attempt fetch latency.\n")
	sb.WriteString("# TYPE localch_fetch_latency_seconds histogram\n")
	appendHistogram(&sb, "localch_fetch_latency_seconds", fetchLatencyBuckets,
		fetchLatencyCounts, &fetchLatencySumNs, &fetchLatencyCount, "%.2f")

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}

func writeCounter(sb *strings.Builder, name, help string, value uint64) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, value))
}

// appendHistogram writes a Prometheus histogram (buckets, +Inf, sum, count) to sb.
// counts must have len(buckets)+1 elements.
func appendHistogram(sb *strings.Builder, name string, buckets []float64, counts []uint64, sumNs, count *uint64, leFmt string) {
	var cumulative uint64
	for i, bound := range buckets {
		cumulative += atomic.LoadUint64(&counts[i])
		sb.WriteString(fmt.Sprintf("%s_bucket{le=\"%s\"} %d\n", name, fmt.Sprintf(leFmt, bound), cumulative))
	}
	cumulative += atomic.LoadUint64(&counts[len(buckets)])
	sb.WriteString(fmt.Sprintf("%s_bucket{le=\"+Inf\"} %d\n", name, cumulative))
	sumSeconds := float64(atomic.LoadUint64(sumNs)) / float64(time.Second)
	sb.WriteString(fmt.Sprintf("%s_sum %.6f\n", name, sumSeconds))
	sb.WriteString(fmt.Sprintf("%s_count %d\n", name, atomic.LoadUint64(count)))
}

func observeFetchLatency(duration time.Duration) {
	if duration <= 0 {
		return
	}
	seconds := duration.Seconds()
	bucketIndex := len(fetchLatencyBuckets)
	for i, bound := range fetchLatencyBuckets {
		if seconds <= bound {
			bucketIndex = i
			break
		}
	}
	atomic.AddUint64(&fetchLatencyCounts[bucketIndex], 1)
	atomic.AddUint64(&fetchLatencySumNs, uint64(duration.Nanoseconds()))
	atomic.AddUint64(&fetchLatencyCount, 1)
}
