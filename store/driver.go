package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// SystemSetting model related methods.
	UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error)
	ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error)

	// ViewState model related methods.
	// GetViewState returns nil without error when the user has no stored view state.
	UpsertViewState(ctx context.Context, upsert *UpsertViewState) (*ViewState, error)
	GetViewState(ctx context.Context, find *FindViewState) (*ViewState, error)
}
