package store

import "errors"

// Sentinel errors returned by repository methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrNotFound is returned when a record with the requested id does not
	// exist in the store-of-record.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRecordID is returned for ids that are not valid UUIDs.
	ErrInvalidRecordID = errors.New("invalid record id")

	// ErrNothingAppended is returned when an outbox insert reports no
	// affected rows.
	ErrNothingAppended = errors.New("outbox item was not appended")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when iterating a result set fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrConnecting is returned when a database connection cannot be opened
	// or pinged.
	ErrConnecting = errors.New("failed to connect to database")
)
