// Package ingest submits URLs for AI content ingestion and follows the
// resulting server-side jobs to a terminal state.
package ingest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/harshit-singhania/recallforge/pkg/api"
)

// SubmitAPI is the API surface needed to start an ingestion job.
type SubmitAPI interface {
	SubmitSource(ctx context.Context, req api.IngestRequest) (*api.Source, error)
}

// Service submits ingestion jobs and hands them to the poller.
type Service struct {
	api    SubmitAPI
	poller *Poller
}

// NewService creates an ingestion service.
func NewService(submitAPI SubmitAPI, poller *Poller) *Service {
	return &Service{
		api:    submitAPI,
		poller: poller,
	}
}

// Submit sends a URL to the ingestion endpoint and returns the initial job
// record. The record starts in PENDING or PROCESSING; the server drives all
// further transitions.
func (s *Service) Submit(ctx context.Context, rawURL string, deckID int64) (*api.Source, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	source, err := s.api.SubmitSource(ctx, api.IngestRequest{URL: rawURL, Deck: deckID})
	if err != nil {
		return nil, fmt.Errorf("failed to submit source: %w", err)
	}
	return source, nil
}

// SubmitAndWatch submits a URL and immediately starts a poll loop for the
// returned job. The channel delivers one Result when the job reaches a
// terminal state.
func (s *Service) SubmitAndWatch(ctx context.Context, rawURL string, deckID int64) (*api.Source, <-chan Result, error) {
	source, err := s.Submit(ctx, rawURL, deckID)
	if err != nil {
		return nil, nil, err
	}

	ch, err := s.poller.Watch(ctx, source.ID)
	if err != nil {
		return source, nil, err
	}
	return source, ch, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url: scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url: missing host")
	}
	return nil
}
