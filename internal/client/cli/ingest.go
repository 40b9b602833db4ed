package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/harshit-singhania/recallforge/internal/client/ingest"
)

func (c *Cli) runIngest(ctx context.Context, rawURL string, deckID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if deckID == 0 {
		return fmt.Errorf("a target deck is required: pass --deck <id> (see 'recallforge decks')")
	}

	source, results, err := c.ingester.SubmitAndWatch(ctx, rawURL, deckID)
	if err != nil {
		return err
	}

	c.io.Printf("Submitted source %d (%s)\n", source.ID, source.Status)
	c.io.Println("Waiting for the ingestion job to finish...")

	result, ok := <-results
	if !ok {
		// Cancelled before the job reached a terminal state.
		return ctx.Err()
	}

	if result.Err != nil {
		if errors.Is(result.Err, ingest.ErrJobFailed) {
			return fmt.Errorf("ingestion of %s failed: %w", rawURL, result.Err)
		}
		return fmt.Errorf("lost track of ingestion job %d: %w", source.ID, result.Err)
	}

	c.io.Println("✓ Ingestion completed!")

	// The job produced new cards; refresh the deck's card list.
	cards, err := c.backend.ListCards(ctx, deckID)
	if err != nil {
		c.io.Printf("Warning: failed to refresh deck cards: %v\n", err)
		return nil
	}
	c.io.Printf("Deck %d now has %d cards.\n", deckID, len(cards))

	return nil
}
