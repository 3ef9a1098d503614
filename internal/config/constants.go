package config

// Default locations of the persisted data
const (
	DefaultDataDir = "./data"

	// DefaultCatalogCSVPath is the delimited-text catalog file
	DefaultCatalogCSVPath = "./data/books.csv"

	// DefaultCatalogJSONPath is the JSON catalog document
	DefaultCatalogJSONPath = "./data/catalog.json"

	// DefaultDatabasePath is the SQLite file used by the relational backend
	DefaultDatabasePath = "./data/library.db"

	DefaultUsersJSONPath = "./data/users.json"
	DefaultLoansJSONPath = "./data/loans.json"

	// DefaultSeedPath is imported into an empty catalog at startup
	DefaultSeedPath = "./data/books.json"

	// DefaultTasksDatabasePath holds the background task queue
	DefaultTasksDatabasePath = "./data/library-tasks.db"

	DefaultLoanDays = 14
)
