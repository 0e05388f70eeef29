package app

import (
	"strings"

	"github.com/samit-dev/wisuda/internal/store"
	"github.com/samit-dev/wisuda/internal/store/postgres"
	"github.com/samit-dev/wisuda/internal/store/sqlite"
)

func NewStore(dsn string) (store.SubmissionStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn)
	}
	return sqlite.NewSQLiteStore(dsn)
}
