package config

import "time"

// Default paths and lending parameters
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./librarium.db"

	// DefaultLoanPeriod is how long a book may be kept before fines accrue
	DefaultLoanPeriod = 7 * 24 * time.Hour

	// DefaultDailyFineRate is the flat fine charged per overdue day
	DefaultDailyFineRate = 5
)
