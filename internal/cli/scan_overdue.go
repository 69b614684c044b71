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
	"github.com/mrlokans/librarian/internal/tasks"
)

// ScanOverdueCommand runs one overdue scan and exits. It is meant for
// cron jobs on hosts where the server's own scheduler is disabled.
type ScanOverdueCommand struct {
	Database config.Database
	Verbose  bool

	out io.Writer
	now func() time.Time
}

// NewScanOverdueCommand creates a new ScanOverdueCommand for the configured database
func NewScanOverdueCommand(cfg config.Database) *ScanOverdueCommand {
	return &ScanOverdueCommand{Database: cfg, out: os.Stdout, now: time.Now}
}

// ParseFlags parses command line flags
func (cmd *ScanOverdueCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("scan-overdue", flag.ContinueOnError)

	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every overdue loan")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s scan-overdue [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Record an activity event for every loan that is newly overdue.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the scan
func (cmd *ScanOverdueCommand) Run() error {
	db, err := database.Open(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	events := activity.NewService(activityRepo.NewRepository(db.DB))
	svc := library.NewService(db, library.WithActivity(events), library.WithClock(cmd.now))

	if cmd.Verbose {
		overdue, err := svc.OverdueLoans(ctx)
		if err != nil {
			return fmt.Errorf("failed to list overdue loans: %w", err)
		}
		for _, view := range overdue {
			title := fmt.Sprintf("book #%d", view.Loan.BookID)
			if view.Book != nil {
				title = view.Book.Title
			}
			fmt.Fprintf(cmd.out, "  %s: %s, due %s\n", view.Loan.PatronID, title, view.ReturnBy)
		}
	}

	flagged, err := tasks.ScanOverdueLoans(ctx, svc, events)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "Flagged %d newly overdue loans\n", flagged)
	return nil
}
