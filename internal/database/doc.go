// Package database provides the data access layer for the library.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, driver selection, migrations
//	├── books/           # Book catalogue and availability flag
//	├── patrons/         # Patron records, looked up by id or card number
//	├── loans/           # Loan history, open and overdue loans
//	└── activity/        # Activity log written by the web UI and tasks
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./library.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	loansRepo := loans.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(ctx, 123)
//	overdue, err := loansRepo.ListOverdueLoans(ctx, time.Now())
//
// Repositories that take part in multi-step writes expose WithTx so the
// same queries can run inside Database.Transaction.
//
// # Interface Implementations
//
//   - books.Repository, patrons.Repository, loans.Repository: used by library.Service
//   - activity.Repository: implements activity.EventStore
//
// # Drivers
//
// SQLite is the default. Setting DATABASE_DRIVER=postgres with a
// DATABASE_DSN switches the dialector; the schema is migrated the same way.
package database
