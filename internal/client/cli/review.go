package cli

import (
	"context"
	"fmt"

	"github.com/harshit-singhania/recallforge/internal/client/review"
)

const keyCtrlC = 3

func (c *Cli) runReview(ctx context.Context, deckID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	sess := review.NewSession(c.backend, deckID, c.logger)
	if err := sess.Start(ctx); err != nil {
		return err
	}

	c.render(sess)

	for {
		key, err := c.io.ReadKey()
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		if key == 'q' || key == keyCtrlC {
			c.io.Println()
			c.io.Printf("Reviewed %d card(s) this session.\n", sess.ReviewCount())
			return nil
		}

		handled, err := sess.HandleKey(ctx, key)
		if err != nil {
			// Recover at the boundary: show the problem, keep the session.
			c.io.Printf("Error: %v\n", err)
			continue
		}
		if handled {
			c.render(sess)
		}
	}
}

// render prints the current session screen.
func (c *Cli) render(sess *review.Session) {
	c.io.Println()

	switch sess.State() {
	case review.StateFront:
		card := sess.Card()
		c.io.Println("--- QUESTION ---")
		c.io.Println(card.Front)
		if sess.HintShown() {
			c.io.Printf("Hint: %s\n", card.Hint)
		}
		c.io.Println()
		if card.Hint != "" && !sess.HintShown() {
			c.io.Println("[space] reveal answer  [h] hint  [q] quit")
		} else {
			c.io.Println("[space] reveal answer  [q] quit")
		}

	case review.StateBack:
		card := sess.Card()
		c.io.Println("--- ANSWER ---")
		c.io.Println(card.Back)
		c.io.Println()
		c.io.Println("How well did you recall this?")
		c.io.Println("[1] Again  [2] Hard  [3] Good  [4] Easy  [q] quit")

	case review.StateCompleted:
		c.io.Println("All done!")
		if sess.ReviewCount() > 0 {
			c.io.Printf("You reviewed %d card(s) this session.\n", sess.ReviewCount())
		} else {
			c.io.Println("No cards are due for review right now.")
		}
		if sess.LastError() != nil {
			c.io.Println("Note: the session ended because the server could not be reached. Try again later.")
		}
		c.io.Println("[r] review again  [q] quit")
	}
}
