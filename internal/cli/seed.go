package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/database/books"
	"github.com/mrlokans/librarydesk/internal/entities"
)

// SeedBook is one entry of a seed file.
type SeedBook struct {
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	IsCheckedOut bool       `json:"is_checked_out"`
	CreatedAt    *time.Time `json:"created_at"`
}

type SeedCommand struct {
	File         string
	DatabasePath string
	DryRun       bool

	Config *config.Config
	Out    io.Writer
}

func NewSeedCommand(cfg *config.Config) *SeedCommand {
	return &SeedCommand{Config: cfg, Out: os.Stdout}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	fs.StringVar(&cmd.File, "file", "", "JSON file with an array of {\"title\", \"author\"} objects (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate the file without writing to the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Bulk create books from a JSON file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -file books.json -db ./demo.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.File == "" {
		fs.Usage()
		return fmt.Errorf("file is required")
	}

	return nil
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(r io.Reader) ([]entities.Book, error) {
	var entries []SeedBook
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	result := make([]entities.Book, 0, len(entries))
	for i, e := range entries {
		title := strings.TrimSpace(e.Title)
		author := strings.TrimSpace(e.Author)
		if title == "" || author == "" {
			return nil, fmt.Errorf("entry %d: title and author are required", i+1)
		}

		book := entities.Book{
			Title:        title,
			Author:       author,
			IsCheckedOut: e.IsCheckedOut,
		}
		if e.CreatedAt != nil {
			book.CreatedAt = e.CreatedAt.UTC()
		}
		result = append(result, book)
	}
	return result, nil
}

func (cmd *SeedCommand) Run() error {
	f, err := os.Open(cmd.File)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	seed, err := LoadSeedFile(f)
	if err != nil {
		return err
	}

	if cmd.DryRun {
		fmt.Fprintf(cmd.Out, "%d books are valid\n", len(seed))
		return nil
	}

	db, err := database.NewDatabase(databaseConfig(cmd.Config, cmd.DatabasePath))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := books.NewRepository(db.DB).CreateMany(context.Background(), seed); err != nil {
		return fmt.Errorf("create books: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Created %d books\n", len(seed))
	return nil
}

// databaseConfig applies a -db override on top of the configured database.
func databaseConfig(cfg *config.Config, path string) config.Database {
	var dbCfg config.Database
	if cfg != nil {
		dbCfg = cfg.Database
	}
	if path != "" {
		dbCfg.Driver = config.DatabaseDriverSQLite
		dbCfg.Path = path
	}
	return dbCfg
}
