package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harshit-singhania/recallforge/pkg/api"
)

// DefaultInterval is how often a job's status is queried.
const DefaultInterval = 2 * time.Second

var (
	// ErrJobFailed indicates that the server reported the ingestion job as
	// FAILED.
	ErrJobFailed = errors.New("ingestion job failed")

	// ErrAlreadyWatching indicates that a poll loop for this job id is
	// already running. At most one loop exists per id.
	ErrAlreadyWatching = errors.New("job is already being watched")
)

// Result is delivered exactly once per watched job, when it reaches a
// terminal state or its status can no longer be queried. Source carries the
// last record seen, when one was obtained.
type Result struct {
	Source *api.Source
	Err    error
}

// SourceAPI is the API surface the poller needs.
type SourceAPI interface {
	GetSource(ctx context.Context, id int64) (*api.Source, error)
}

// Poller follows ingestion jobs to completion. Each watched job gets its own
// loop with its own ticker; loops for distinct ids run concurrently and
// share no state beyond the duplicate-watch guard.
type Poller struct {
	api      SourceAPI
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	active map[int64]struct{}
}

// NewPoller creates a poller querying job status every interval.
func NewPoller(sourceAPI SourceAPI, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		api:      sourceAPI,
		interval: interval,
		logger:   logger,
		active:   make(map[int64]struct{}),
	}
}

// Watch starts a poll loop for the given job id and returns a channel that
// delivers exactly one Result before closing. Cancelling ctx tears the loop
// down; the channel is then closed without a Result. Watching an id that
// already has an active loop returns ErrAlreadyWatching.
func (p *Poller) Watch(ctx context.Context, id int64) (<-chan Result, error) {
	p.mu.Lock()
	if _, ok := p.active[id]; ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("source %d: %w", id, ErrAlreadyWatching)
	}
	p.active[id] = struct{}{}
	p.mu.Unlock()

	ch := make(chan Result, 1)
	go p.run(ctx, id, ch)
	return ch, nil
}

// Watching reports whether a loop for the given id is currently active.
func (p *Poller) Watching(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[id]
	return ok
}

// run is the poll loop for one job. It stops on the first terminal status,
// on the first failed status query, or when ctx is cancelled. The ticker is
// released on every exit path.
func (p *Poller) run(ctx context.Context, id int64, ch chan<- Result) {
	defer close(ch)
	defer p.release(id)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("ingestion poll cancelled", "source_id", id)
			return
		case <-ticker.C:
			source, err := p.api.GetSource(ctx, id)
			if err != nil {
				// A job whose status cannot be read is treated as dead;
				// polling never continues indefinitely.
				p.logger.Warn("ingestion status query failed, stopping poll",
					"source_id", id, "error", err)
				ch <- Result{Err: fmt.Errorf("status query failed: %w", err)}
				return
			}

			switch source.Status {
			case api.SourcePending, api.SourceProcessing:
				continue
			case api.SourceCompleted:
				p.logger.Debug("ingestion completed", "source_id", id)
				ch <- Result{Source: source}
				return
			case api.SourceFailed:
				p.logger.Debug("ingestion failed", "source_id", id,
					"error_log", source.ErrorLog)
				ch <- Result{Source: source, Err: failedError(source)}
				return
			default:
				ch <- Result{Source: source, Err: fmt.Errorf(
					"unknown ingestion status %q", source.Status)}
				return
			}
		}
	}
}

func (p *Poller) release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, id)
}

func failedError(source *api.Source) error {
	if source.ErrorLog != "" {
		return fmt.Errorf("%w: %s", ErrJobFailed, source.ErrorLog)
	}
	return ErrJobFailed
}
