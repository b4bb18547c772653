package db

import (
	"github.com/pkg/errors"

	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/store"
	"github.com/relaymind/recall/store/db/postgres"
	"github.com/relaymind/recall/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default for local and demo use; PostgreSQL adds native
// vector search through pgvector.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
