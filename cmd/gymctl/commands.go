package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/config"
	"github.com/2beens/gymtracker/internal/db"
	"github.com/2beens/gymtracker/internal/gymstats/analytics"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/gymstats/templates"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"
	"github.com/2beens/gymtracker/internal/seed"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema, if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, secrets, err := loadConfig(ctx, flags)
			if err != nil {
				return err
			}
			pool, err := openPool(ctx, cfg, secrets)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Infof("schema up to date [%d statements]", len(db.Schema))
			return nil
		},
	}
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	var fixturePath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a fixture of accounts, workouts and templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fixture, err := loadFixture(fixturePath)
			if err != nil {
				return err
			}

			cfg, secrets, err := loadConfig(ctx, flags)
			if err != nil {
				return err
			}
			pool, err := openPool(ctx, cfg, secrets)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			accounts := auth.NewPsqlAccounts(pool)
			tokens, err := auth.NewTokenService([]byte(secrets.TokenSecret), cfg.TokenTTL.Duration)
			if err != nil {
				return err
			}
			authService, err := auth.NewService(accounts, tokens, cfg.PasswordHashCost)
			if err != nil {
				return err
			}
			dataStore := store.NewPsqlStore(pool)

			// seeded sets must invalidate the progressions the service has cached
			listeners, closeCache, err := progressionListeners(ctx, cfg, secrets, dataStore)
			if err != nil {
				return err
			}
			defer closeCache()

			seeder := seed.NewSeeder(accounts, authService, workouts.NewLedger(dataStore, listeners...), templates.NewService(dataStore))
			report, err := seeder.Apply(ctx, fixture)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"accounts created: %d\nexercises added: %d\nsets added: %d\ntemplates added: %d\n",
				report.AccountsCreated, report.ExercisesAdded, report.SetsAdded, report.TemplatesAdded,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "file", "", "YAML fixture file; the built-in test account fixture is used if empty")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := pkg.HashPassword(args[0], cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", pkg.DefaultHashCost, "bcrypt cost")
	return cmd
}

func loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, *config.Secrets, error) {
	cfg, err := config.Load(flags.env, flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Storage != config.StoragePostgres {
		return nil, nil, errors.New("only postgres storage can be managed by gymctl")
	}
	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, secrets, nil
}

func openPool(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (*pgxpool.Pool, error) {
	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: secrets.PostgresPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// progressionListeners returns the progression cache the service uses for the
// store, as a ledger listener. There is none if redis is not configured.
func progressionListeners(
	ctx context.Context,
	cfg *config.Config,
	secrets *config.Secrets,
	dataStore store.Store,
) ([]workouts.ChangeListener, func(), error) {
	if cfg.RedisHost == "" {
		log.Debugln("redis host not set, no progression cache to invalidate")
		return nil, func() {}, nil
	}

	instanceID, err := dataStore.InstanceID(ctx)
	if err != nil {
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
	})
	closeCache := func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}

	cache := analytics.NewProgressionCache(
		rdb,
		instanceID,
		cfg.ProgressionL1Size,
		cfg.ProgressionCacheTTL.Duration,
		metrics.NewManager("gymtracker", "gymctl", metrics.SetupPrometheus()),
	)
	return []workouts.ChangeListener{cache}, closeCache, nil
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.DefaultFixture()
	}
	return seed.LoadFile(path)
}
