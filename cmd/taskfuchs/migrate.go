package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Initialize or upgrade the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		setupLogger(instanceProfile)

		storeInstance, err := openStore(cmd.Context(), instanceProfile)
		if err != nil {
			return err
		}
		defer storeInstance.Close()

		schemaVersion, err := storeInstance.GetSchemaVersion(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to read schema version")
		}
		slog.Info("database is up to date", slog.String("schema_version", schemaVersion))
		return nil
	},
}
