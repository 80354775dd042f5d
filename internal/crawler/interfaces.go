package crawler

import (
	"context"

	"localch-scraper/internal/models"
)

// PageFetcher abstracts fetch.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// RecordSink receives each record as soon as it has been scraped.
type RecordSink interface {
	Publish(ctx context.Context, record models.ListingRecord) error
}

// SinkFunc adapts a function to RecordSink.
type SinkFunc func(ctx context.Context, record models.ListingRecord) error

func (f SinkFunc) Publish(ctx context.Context, record models.ListingRecord) error {
	return f(ctx, record)
}
