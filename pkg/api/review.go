package api

import "time"

// Card is one flashcard as served by the review endpoint. Hint, Difficulty
// and Tags are optional; scheduling fields stay server-side.
type Card struct {
	ID         int64    `json:"id"`
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Hint       string   `json:"hint,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// NoCardsDueMessage is the sentinel payload body the server returns (with
// HTTP 200) when nothing is due for review.
const NoCardsDueMessage = "No cards due for review"

// NextCardResponse is the union returned by the next-card endpoint: either a
// card or the no-cards-due sentinel message.
type NextCardResponse struct {
	Card
	Message string `json:"message,omitempty"`
}

// Due reports whether the response carries an actual card.
func (r *NextCardResponse) Due() bool {
	return r.Message != NoCardsDueMessage
}

// RateRequest submits an SM-2 grade (0-5) for the card under review.
type RateRequest struct {
	Rating int `json:"rating"`
}

// RateResponse acknowledges a rating with the card's new schedule.
type RateResponse struct {
	NextReviewAt time.Time `json:"next_review_at"`
	IntervalDays int       `json:"interval_days"`
}

// Deck is a named collection of cards. The client only lists decks to scope
// reviews and ingestions; deck management itself is out of scope.
type Deck struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
