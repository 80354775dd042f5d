package models

import (
	"encoding/json"
	"time"
)

// ListingEvent is the payload published to the listings topic.
type ListingEvent struct {
	RunID     string        `json:"run_id"`
	Keyword   string        `json:"keyword"`
	Record    ListingRecord `json:"record"`
	ScrapedAt time.Time     `json:"scraped_at"`
}

// NewListingEvent marshals a listing event payload.
func NewListingEvent(runID, keyword string, record ListingRecord) ([]byte, error) {
	return json.Marshal(ListingEvent{
		RunID:     runID,
		Keyword:   keyword,
		Record:    record,
		ScrapedAt: time.Now().UTC(),
	})
}
