package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// MaxOpenConns caps concurrent store access; callers queue when exhausted.
const MaxOpenConns = 10
