// Command generate_demo creates a fresh demo library database with sample
// books, patrons and loans.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/activity"
	"github.com/mrlokans/librarian/internal/database"
	activityRepo "github.com/mrlokans/librarian/internal/database/activity"
	"github.com/mrlokans/librarian/internal/library"
	"github.com/mrlokans/librarian/internal/seed"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	events := activity.NewService(activityRepo.NewRepository(db.DB))
	svc := library.NewService(db, library.WithActivity(events))

	summary, err := seed.Populate(context.Background(), svc, time.Now())
	if err != nil {
		log.Fatalf("Failed to populate demo database: %v", err)
	}

	log.Printf("Demo database generated successfully: %s", summary)
}
