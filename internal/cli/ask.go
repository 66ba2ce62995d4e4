package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/librarydesk/internal/assistant"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
)

type AskCommand struct {
	Question     string
	DatabasePath string

	Config *config.Config
	Out    io.Writer
}

func NewAskCommand(cfg *config.Config) *AskCommand {
	return &AskCommand{Config: cfg, Out: os.Stdout}
}

func (cmd *AskCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)

	fs.StringVar(&cmd.Question, "q", "", "Question about the books (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s ask -q \"question\" [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ask the assistant about the current catalog.\n")
		fmt.Fprintf(os.Stderr, "Requires CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_AI_TOKEN.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.Question = strings.TrimSpace(cmd.Question)
	if cmd.Question == "" {
		fs.Usage()
		return errors.New("question is required")
	}

	return nil
}

func (cmd *AskCommand) Run() error {
	if cmd.Config == nil || !cmd.Config.AIConfigured() {
		return assistant.ErrMissingCredentials
	}

	db, err := database.NewDatabase(databaseConfig(cmd.Config, cmd.DatabasePath))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	all, err := books.NewRepository(db.DB).All(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}

	svc := assistant.NewService(assistant.NewClient(cmd.Config.AI), nil, 0, 0)
	fmt.Fprintln(cmd.Out, svc.Ask(ctx, cmd.Question, all))
	return nil
}
