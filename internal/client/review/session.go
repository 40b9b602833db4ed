// Package review drives a turn-based review session against the remote
// spaced-repetition scheduler, one card at a time.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harshit-singhania/recallforge/pkg/api"
)

// State is the position of the session in its card cycle.
type State int

const (
	// StateLoading means the next due card is being fetched.
	StateLoading State = iota
	// StateFront presents the question side of the current card.
	StateFront
	// StateBack presents the answer side of the current card.
	StateBack
	// StateSubmitting means a rating is in flight; rating controls are
	// disabled until the next card (or completion) resolves.
	StateSubmitting
	// StateCompleted means the server reported no due card.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFront:
		return "front"
	case StateBack:
		return "back"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Bucket is one of the four rating choices offered after revealing the
// answer.
type Bucket int

const (
	Again Bucket = iota
	Hard
	Good
	Easy
)

// sm2Grades maps each bucket to the 0-5 grade the scheduler expects.
var sm2Grades = [...]int{Again: 0, Hard: 2, Good: 3, Easy: 5}

// Grade returns the scheduler grade for the bucket.
func (b Bucket) Grade() int {
	return sm2Grades[b]
}

func (b Bucket) String() string {
	switch b {
	case Again:
		return "Again"
	case Hard:
		return "Hard"
	case Good:
		return "Good"
	case Easy:
		return "Easy"
	default:
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
}

var (
	// ErrNotRatable is returned when Rate is called outside the answer
	// state, including while a previous rating is still in flight.
	ErrNotRatable = errors.New("rating is only allowed while the answer is shown")

	// ErrNotCompleted is returned when Restart is called before the
	// session has completed.
	ErrNotCompleted = errors.New("session is not completed")
)

// CardAPI is the scheduler surface the session depends on. Both calls are
// opaque to the client: what "due" means and how ratings move schedules is
// entirely server-side.
type CardAPI interface {
	// NextCard returns the next due card, or (nil, nil) when none is due.
	NextCard(ctx context.Context, deckID int64) (*api.Card, error)
	RateCard(ctx context.Context, cardID int64, rating int) (*api.RateResponse, error)
}

// Session is the review state machine: fetch → present question → reveal
// answer → submit rating → fetch next, until no card is due. It is driven
// from a single goroutine; network calls suspend the caller's flow.
type Session struct {
	api    CardAPI
	deckID int64 // 0 reviews across all decks
	logger *slog.Logger

	state       State
	card        *api.Card
	hintShown   bool
	reviewCount int
	lastErr     error
}

// NewSession creates a review session scoped to deckID, or to all decks
// when deckID is 0. Call Start to fetch the first card.
func NewSession(cardAPI CardAPI, deckID int64, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		api:    cardAPI,
		deckID: deckID,
		logger: logger,
		state:  StateLoading,
	}
}

// Start fetches the first due card.
func (s *Session) Start(ctx context.Context) error {
	return s.fetchNext(ctx)
}

// fetchNext requests the next due card. The no-card-due sentinel completes
// the session; a transport error also fails closed to completed, but is
// recorded and logged as an error rather than a normal exhaustion.
func (s *Session) fetchNext(ctx context.Context) error {
	s.state = StateLoading
	s.card = nil
	s.hintShown = false
	s.lastErr = nil

	card, err := s.api.NextCard(ctx, s.deckID)
	if err != nil {
		s.logger.Error("failed to fetch next card", "deck_id", s.deckID, "error", err)
		s.lastErr = err
		s.state = StateCompleted
		return nil
	}

	if card == nil {
		s.logger.Debug("no cards due, session completed",
			"deck_id", s.deckID, "review_count", s.reviewCount)
		s.state = StateCompleted
		return nil
	}

	s.card = card
	s.state = StateFront
	return nil
}

// Flip reveals the answer. It only transitions front → back; flipping an
// already revealed card is a no-op.
func (s *Session) Flip() {
	if s.state == StateFront {
		s.state = StateBack
	}
}

// ToggleHint toggles the hint, which is available only on the question side
// and only when the card carries one. It reports whether the toggle applied.
// The flip state is unaffected.
func (s *Session) ToggleHint() bool {
	if s.state != StateFront || s.card == nil || s.card.Hint == "" {
		return false
	}
	s.hintShown = !s.hintShown
	return true
}

// Rate submits the chosen bucket for the current card, increments the
// session counter and immediately fetches the next card. It is only
// reachable from the answer state; while a submission is in flight the
// session sits in StateSubmitting and further ratings are rejected.
func (s *Session) Rate(ctx context.Context, bucket Bucket) error {
	if s.state != StateBack {
		return ErrNotRatable
	}

	card := s.card
	s.state = StateSubmitting

	if _, err := s.api.RateCard(ctx, card.ID, bucket.Grade()); err != nil {
		// Stay on the answer so the user can retry the rating.
		s.state = StateBack
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	// The server owns the card's new schedule; drop it from client memory.
	s.reviewCount++
	s.card = nil

	return s.fetchNext(ctx)
}

// Restart resets the counter and re-enters the fetch loop. It is only
// valid once the session has completed ("review again").
func (s *Session) Restart(ctx context.Context) error {
	if s.state != StateCompleted {
		return ErrNotCompleted
	}
	s.reviewCount = 0
	return s.fetchNext(ctx)
}

// State returns the current machine state.
func (s *Session) State() State {
	return s.state
}

// Card returns the card currently presented, or nil.
func (s *Session) Card() *api.Card {
	return s.card
}

// HintShown reports whether the current card's hint is revealed.
func (s *Session) HintShown() bool {
	return s.hintShown
}

// ReviewCount returns the number of ratings submitted this session.
func (s *Session) ReviewCount() int {
	return s.reviewCount
}

// Completed reports whether the session has reached its terminal state.
func (s *Session) Completed() bool {
	return s.state == StateCompleted
}

// LastError returns the transport error that completed the session, or nil
// when the session completed normally (or is still running). It
// distinguishes "no card due" from a failed fetch.
func (s *Session) LastError() error {
	return s.lastErr
}
