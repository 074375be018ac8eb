package models

import "time"

// Page represents a rendered web page
type Page struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Markdown   string    `json:"markdown"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// OutcomeStatus classifies how a single link was handled.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
	StatusSkipped   OutcomeStatus = "skipped"
)

// LinkOutcome is the result of processing one link.
type LinkOutcome struct {
	URL      string        `json:"url"`
	Status   OutcomeStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// RunSummary aggregates a whole crawl run
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Seed       string        `json:"seed"`
	OutputFile string        `json:"output_file"`
	Discovered int           `json:"discovered"`
	Filtered   int           `json:"filtered"`
	Unique     int           `json:"unique"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcomes   []LinkOutcome `json:"outcomes"`
}

// Record appends an outcome and bumps the matching counter.
func (s *RunSummary) Record(o LinkOutcome) {
	switch o.Status {
	case StatusSucceeded:
		s.Succeeded++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Elapsed returns the wall time of the run.
func (s *RunSummary) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
