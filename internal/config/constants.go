package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./library.db"

	// DefaultLoanPeriodDays is how long a new loan runs unless the librarian changes the return date
	DefaultLoanPeriodDays = 7

	// DefaultActivityRetentionDays is how long activity events are kept
	DefaultActivityRetentionDays = 365
)
