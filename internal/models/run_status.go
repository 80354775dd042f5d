package models

import "time"

// RunStage is the coarse progress marker of a scrape run.
type RunStage string

const (
	StageQueued     RunStage = "queued"
	StageCollecting RunStage = "collecting"
	StageScraping   RunStage = "scraping"
	StageWriting    RunStage = "writing"
	StageDone       RunStage = "done"
	StageFailed     RunStage = "failed"
)

// RunStatus tracks the state of one scrape run.
type RunStatus struct {
	RunID          string    `json:"run_id"`
	Keyword        string    `json:"keyword"`
	Stage          RunStage  `json:"stage"`
	URLsCollected  int       `json:"urls_collected"`
	RecordsScraped int       `json:"records_scraped"`
	OutputPath     string    `json:"output_path,omitempty"`
	Error          string    `json:"error,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RunSummary is what a finished run reports back to the caller.
type RunSummary struct {
	RunID      string
	Keyword    string
	URLs       int
	Records    int
	OutputPath string
}
