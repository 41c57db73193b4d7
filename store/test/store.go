package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Edelbertschen/taskfuchs-sub005/internal/profile"
	"github.com/Edelbertschen/taskfuchs-sub005/internal/version"
	"github.com/Edelbertschen/taskfuchs-sub005/store"
	"github.com/Edelbertschen/taskfuchs-sub005/store/db"
)

// NewTestingStore returns a migrated store backed by the driver named in DRIVER (default sqlite).
// The store is closed when the test finishes.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	return NewTestingStoreWithProfile(ctx, t, GetTestingProfile(t))
}

// NewTestingStoreWithProfile opens and migrates a store for an existing profile, so tests can reopen a database
// or run several stores against one database.
func NewTestingStoreWithProfile(ctx context.Context, t *testing.T, profile *profile.Profile, opts ...store.Option) *store.Store {
	t.Helper()

	dbDriver, err := db.NewDBDriver(profile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	s := store.New(dbDriver, profile, opts...)
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return s
}

// GetTestingProfile builds a profile for the driver named in DRIVER.
func GetTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()
	return GetTestingProfileForDriver(t, getDriverFromEnv())
}

// GetTestingProfileForDriver builds a profile for driver.
// SQLite uses a fresh file in the test's temp dir; postgres uses GetPostgresDSN.
func GetTestingProfileForDriver(t *testing.T, driver string) *profile.Profile {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:    "prod",
		Data:    dir,
		Driver:  driver,
		Version: version.GetCurrentVersion("prod"),
		Secret:  "test-secret",
	}
	p.FromEnv()

	switch driver {
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	default:
		p.DSN = filepath.Join(dir, "taskfuchs_test.db")
	}
	return p
}

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	return "sqlite"
}
