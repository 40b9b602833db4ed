package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runDecks(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	decks, err := c.backend.ListDecks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list decks: %w", err)
	}

	if len(decks) == 0 {
		c.io.Println("No decks yet.")
		return nil
	}

	c.io.Printf("%-6s %-30s %s\n", "ID", "NAME", "DESCRIPTION")
	for _, deck := range decks {
		c.io.Printf("%-6d %-30s %s\n", deck.ID, deck.Name, deck.Description)
	}

	return nil
}
