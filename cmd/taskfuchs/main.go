package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Edelbertschen/taskfuchs-sub005/internal/profile"
	"github.com/Edelbertschen/taskfuchs-sub005/internal/version"
	"github.com/Edelbertschen/taskfuchs-sub005/server"
	"github.com/Edelbertschen/taskfuchs-sub005/store"
	"github.com/Edelbertschen/taskfuchs-sub005/store/cache"
	"github.com/Edelbertschen/taskfuchs-sub005/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "taskfuchs",
		Short: `Stores the per-user view state of the TaskFuchs web client.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			setupLogger(instanceProfile)
			return runServer(cmd.Context(), instanceProfile)
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("secret", "", "secret used to sign and verify access tokens")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "secret"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("taskfuchs")
	viper.AutomaticEnv()

	rootCmd.AddCommand(migrateCmd, tokenCmd)
}

// loadProfile builds and validates the profile from flags, TASKFUCHS_* variables and defaults.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:   viper.GetString("mode"),
		Addr:   viper.GetString("addr"),
		Port:   viper.GetInt("port"),
		Data:   viper.GetString("data"),
		Driver: viper.GetString("driver"),
		DSN:    viper.GetString("dsn"),
		Secret: viper.GetString("secret"),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
	return instanceProfile, nil
}

func setupLogger(instanceProfile *profile.Profile) {
	var handler slog.Handler
	if instanceProfile.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// openStore connects the database, the optional Redis tier, and applies migrations.
func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}

	var opts []store.Option
	if instanceProfile.IsRedisEnabled() {
		redisConfig := cache.DefaultRedisConfig()
		redisConfig.Addr = instanceProfile.CacheRedisAddr
		redisConfig.Password = instanceProfile.CacheRedisPassword
		redisConfig.DB = instanceProfile.CacheRedisDB
		redisConfig.DefaultTTL = instanceProfile.CacheTTL
		redisCache, err := cache.NewRedisCache(ctx, redisConfig)
		if err != nil {
			// The in-memory tier is enough for a single instance.
			slog.Warn("redis cache unavailable, continuing without it",
				slog.String("addr", redisConfig.Addr),
				slog.String("error", err.Error()))
		} else {
			opts = append(opts, store.WithL2Cache(redisCache))
		}
	}

	storeInstance := store.New(dbDriver, instanceProfile, opts...)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return storeInstance, nil
}

func runServer(ctx context.Context, instanceProfile *profile.Profile) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeInstance, err := openStore(ctx, instanceProfile)
	if err != nil {
		return err
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		storeInstance.Close()
		return errors.Wrap(err, "failed to create server")
	}
	if err := s.Start(ctx); err != nil {
		storeInstance.Close()
		return errors.Wrap(err, "failed to start server")
	}
	printGreetings(instanceProfile)

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.Wait() }()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	// Shutdown gets a fresh context so in-flight requests can finish after a signal.
	s.Shutdown(context.Background())
	return err
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("TaskFuchs view-state %s started successfully!\n", instanceProfile.Version)
	fmt.Printf("Data directory: %s\n", instanceProfile.Data)
	fmt.Printf("Database driver: %s\n", instanceProfile.Driver)
	fmt.Printf("Server running on port %d\n", instanceProfile.Port)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
