package store

import (
	"context"

	"github.com/pkg/errors"
)

const (
	// SystemSettingSchemaVersionName is the name of the setting holding the applied schema version.
	SystemSettingSchemaVersionName = "SCHEMA_VERSION"
)

type SystemSetting struct {
	Name        string
	Value       string
	Description string
}

type FindSystemSetting struct {
	Name string
}

func (s *Store) UpsertSystemSetting(ctx context.Context, upsert *SystemSetting) (*SystemSetting, error) {
	return s.driver.UpsertSystemSetting(ctx, upsert)
}

func (s *Store) ListSystemSettings(ctx context.Context, find *FindSystemSetting) ([]*SystemSetting, error) {
	return s.driver.ListSystemSettings(ctx, find)
}

// GetSystemSetting returns the named setting, or nil if it is not set.
func (s *Store) GetSystemSetting(ctx context.Context, name string) (*SystemSetting, error) {
	list, err := s.ListSystemSettings(ctx, &FindSystemSetting{Name: name})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list system setting %s", name)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// GetSchemaVersion returns the schema version recorded in the database, or "" if none.
func (s *Store) GetSchemaVersion(ctx context.Context) (string, error) {
	setting, err := s.GetSystemSetting(ctx, SystemSettingSchemaVersionName)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}
