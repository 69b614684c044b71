package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/librarian/internal/activity"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	activityRepo "github.com/mrlokans/librarian/internal/database/activity"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/seed"
)

// SeedCommand fills the configured database with sample data
type SeedCommand struct {
	Database config.Database
	Force    bool

	out io.Writer
	now func() time.Time
}

// NewSeedCommand creates a new SeedCommand for the configured database
func NewSeedCommand(cfg config.Database) *SeedCommand {
	return &SeedCommand{Database: cfg, out: os.Stdout, now: time.Now}
}

// ParseFlags parses command line flags
func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.BoolVar(&cmd.Force, "force", false, "Add the sample data even when the library already has books")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add sample books, patrons and loans to the library.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the seed command
func (cmd *SeedCommand) Run() error {
	db, err := database.Open(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	events := activity.NewService(activityRepo.NewRepository(db.DB))
	svc := library.NewService(db, library.WithActivity(events), library.WithClock(cmd.now))

	counts, err := svc.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to count books: %w", err)
	}
	if counts.Books > 0 && !cmd.Force {
		fmt.Fprintf(cmd.out, "Library already has %d books, nothing to do (use -force to add the samples anyway)\n", counts.Books)
		return nil
	}

	summary, err := seed.Populate(ctx, svc, cmd.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Seeded %s\n", summary)
	return nil
}
