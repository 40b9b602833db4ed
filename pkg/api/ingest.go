package api

import "time"

// SourceStatus is the server-driven lifecycle of an ingestion job. The
// client only ever reads it; transitions are monotonic towards a terminal
// COMPLETED or FAILED.
type SourceStatus string

const (
	SourcePending    SourceStatus = "PENDING"
	SourceProcessing SourceStatus = "PROCESSING"
	SourceCompleted  SourceStatus = "COMPLETED"
	SourceFailed     SourceStatus = "FAILED"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s SourceStatus) Terminal() bool {
	return s == SourceCompleted || s == SourceFailed
}

// IngestRequest submits a URL to be converted into flashcards for a deck.
type IngestRequest struct {
	URL  string `json:"url"`
	Deck int64  `json:"deck"`
}

// Source is a server-tracked ingestion job record.
type Source struct {
	ID        int64        `json:"id"`
	URL       string       `json:"url"`
	Deck      int64        `json:"deck"`
	Status    SourceStatus `json:"status"`
	ErrorLog  string       `json:"error_log,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
