package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/harshit-singhania/recallforge/internal/client/session"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	if err := c.session.Login(ctx, username, password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			// Expected user behavior, not an application error.
			return err
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user := c.session.User()
	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Logged in as: %s\n", user.Username)

	return nil
}
