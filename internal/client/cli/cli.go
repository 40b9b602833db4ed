// Package cli implements the recallforge command set on top of the session
// manager, the ingestion service and the review state machine.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harshit-singhania/recallforge/internal/client/ingest"
	"github.com/harshit-singhania/recallforge/internal/client/iocli"
	"github.com/harshit-singhania/recallforge/internal/client/session"
	"github.com/harshit-singhania/recallforge/pkg/api"
)

// BackendAPI is the API surface commands use beyond the session manager.
// *api.Client satisfies it.
type BackendAPI interface {
	ListDecks(ctx context.Context) ([]api.Deck, error)
	ListCards(ctx context.Context, deckID int64) ([]api.Card, error)
	NextCard(ctx context.Context, deckID int64) (*api.Card, error)
	RateCard(ctx context.Context, cardID int64, rating int) (*api.RateResponse, error)
}

type Cli struct {
	io       iocli.IO
	session  *session.Manager
	backend  BackendAPI
	ingester *ingest.Service
	logger   *slog.Logger
}

func New(io iocli.IO, sessionMgr *session.Manager, backend BackendAPI, ingester *ingest.Service, logger *slog.Logger) *Cli {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cli{
		io:       io,
		session:  sessionMgr,
		backend:  backend,
		ingester: ingester,
		logger:   logger,
	}
}

// Run dispatches one command. deckID scopes the review and ingest commands;
// 0 means all decks for review.
func (c *Cli) Run(ctx context.Context, command string, args []string, deckID int64) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "register":
		return c.runRegister(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "decks":
		return c.runDecks(ctx)
	case "ingest":
		if len(args) < 1 {
			return fmt.Errorf("usage: recallforge ingest <url> --deck <id>")
		}
		return c.runIngest(ctx, args[0], deckID)
	case "review":
		return c.runReview(ctx, deckID)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// requireAuth guards commands that talk to protected endpoints.
func (c *Cli) requireAuth() error {
	if !c.session.IsAuthenticated() {
		return fmt.Errorf("not logged in. Run 'recallforge login' first")
	}
	return nil
}

func PrintUsage(io iocli.IO) {
	io.Println("RecallForge Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  recallforge [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --server-url URL     Server URL (default: http://localhost:8000)")
	io.Println("  --db-path PATH       Path to local token database (default: recallforge.db)")
	io.Println("  --deck ID            Deck scope for review/ingest (default: all decks for review)")
	io.Println("  --config PATH        YAML config file")
	io.Println()
	io.Println("Commands:")
	io.Println("  register             Create an account and log in")
	io.Println("  login                Log in to the server")
	io.Println("  logout               Log out (local only)")
	io.Println("  status               Show session status")
	io.Println("  decks                List your decks")
	io.Println("  ingest <url>         Convert a URL into flashcards (requires --deck)")
	io.Println("  review               Start an interactive review session")
	io.Println()
	io.Println("Examples:")
	io.Println("  recallforge login")
	io.Println("  recallforge decks")
	io.Println("  recallforge ingest https://example.com/article --deck 3")
	io.Println("  recallforge review --deck 3")
	io.Println("  recallforge review")
}
