package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Schema holds the statements for the gym tracker tables, in apply order.
// All statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS account (
		id         BIGSERIAL PRIMARY KEY,
		username   TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS workout_exercise (
		id         BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES account (id) ON DELETE CASCADE,
		day        TEXT NOT NULL CHECK (day ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}$'),
		name       TEXT NOT NULL,
		UNIQUE (account_id, day, name)
	)`,
	`CREATE TABLE IF NOT EXISTS workout_set (
		id          BIGSERIAL PRIMARY KEY,
		exercise_id BIGINT NOT NULL REFERENCES workout_exercise (id) ON DELETE CASCADE,
		seq         BIGINT NOT NULL,
		reps        INTEGER NOT NULL,
		weight      DOUBLE PRECISION NOT NULL,
		UNIQUE (exercise_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS workout_template (
		id         BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES account (id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		exercises  TEXT[] NOT NULL DEFAULT '{}',
		UNIQUE (account_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS workout_exercise_account_name_idx
		ON workout_exercise (account_id, name)`,
	`CREATE TABLE IF NOT EXISTS store_instance (
		singleton  BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
		id         TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`INSERT INTO store_instance (id) VALUES (gen_random_uuid()::text)
		ON CONFLICT (singleton) DO NOTHING`,
}

// Migrate applies the schema in a single transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (err error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				log.Errorf("migrate: rollback: %s", rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	for i, stmt := range Schema {
		if _, err = tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}

	log.Debugf("migrate: applied %d schema statements", len(Schema))
	return nil
}
