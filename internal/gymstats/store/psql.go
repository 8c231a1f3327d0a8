package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

// InstanceID identifies the database behind the store. The id is created by
// the schema migration and lives as long as the database.
func (s *PsqlStore) InstanceID(ctx context.Context) (string, error) {
	var id string
	if err := s.db.QueryRow(ctx, `SELECT id FROM store_instance`).Scan(&id); err != nil {
		return "", fmt.Errorf("get store instance id: %w", err)
	}
	return "pg-" + id, nil
}

// InTx takes a transaction scoped advisory lock on the owner id, so the
// read-check-write sequences of one owner never interleave.
func (s *PsqlStore) InTx(ctx context.Context, ownerID int64, fn func(tx Tx) error) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.tx")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", ownerID))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				log.Errorf("store: rollback tx for owner %d: %s", ownerID, rollbackErr)
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit tx: %w", commitErr)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ownerID); err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}

	return fn(&psqlTx{tx: tx, ownerID: ownerID})
}

type psqlTx struct {
	tx      pgx.Tx
	ownerID int64
}

func (t *psqlTx) OwnerID() int64 {
	return t.ownerID
}

func (t *psqlTx) GetExercise(ctx context.Context, date, name string) (*ExerciseRow, error) {
	row := ExerciseRow{}
	err := t.tx.QueryRow(
		ctx,
		`SELECT id, day, name FROM workout_exercise WHERE account_id = $1 AND day = $2 AND name = $3`,
		t.ownerID, date, name,
	).Scan(&row.ID, &row.Date, &row.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (t *psqlTx) AddExercise(ctx context.Context, date, name string) (*ExerciseRow, error) {
	row := ExerciseRow{Date: date, Name: name}
	err := t.tx.QueryRow(
		ctx,
		`INSERT INTO workout_exercise (account_id, day, name) VALUES ($1, $2, $3) RETURNING id`,
		t.ownerID, date, name,
	).Scan(&row.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &row, nil
}

func (t *psqlTx) DeleteExercise(ctx context.Context, exerciseID int64) error {
	tag, err := t.tx.Exec(
		ctx,
		`DELETE FROM workout_exercise WHERE id = $1 AND account_id = $2`,
		exerciseID, t.ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *psqlTx) ListExercises(ctx context.Context, date string) ([]ExerciseRow, error) {
	rows, err := t.tx.Query(
		ctx,
		`SELECT id, day, name FROM workout_exercise WHERE account_id = $1 AND day = $2 ORDER BY id`,
		t.ownerID, date,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExerciseRow, error) {
		var e ExerciseRow
		err := row.Scan(&e.ID, &e.Date, &e.Name)
		return e, err
	})
}

func (t *psqlTx) ActiveDates(ctx context.Context, datePrefix string) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.activedates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := t.tx.Query(
		ctx,
		`SELECT DISTINCT day FROM workout_exercise WHERE account_id = $1 AND day LIKE $2 ORDER BY day`,
		t.ownerID, datePrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (t *psqlTx) AddSet(ctx context.Context, exerciseID int64, reps int, weight float64) (*SetRow, error) {
	row := SetRow{
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
	}
	err := t.tx.QueryRow(
		ctx,
		`INSERT INTO workout_set (exercise_id, seq, reps, weight)
			SELECT e.id, COALESCE((SELECT MAX(s.seq) FROM workout_set s WHERE s.exercise_id = e.id), 0) + 1, $3, $4
			FROM workout_exercise e
			WHERE e.id = $1 AND e.account_id = $2
		RETURNING id, seq`,
		exerciseID, t.ownerID, reps, weight,
	).Scan(&row.ID, &row.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pkg.IsForeignKeyViolationError(err) {
			return nil, ErrNotFound
		}
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &row, nil
}

func (t *psqlTx) DeleteSet(ctx context.Context, setID int64) error {
	tag, err := t.tx.Exec(
		ctx,
		`DELETE FROM workout_set s
			USING workout_exercise e
			WHERE s.id = $1 AND s.exercise_id = e.id AND e.account_id = $2`,
		setID, t.ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectSets = `SELECT s.id, s.exercise_id, e.day, e.name, s.seq, s.reps, s.weight
	FROM workout_set s
	JOIN workout_exercise e ON e.id = s.exercise_id
	WHERE e.account_id = $1`

func (t *psqlTx) ListSets(ctx context.Context, exerciseID int64) ([]SetRow, error) {
	return t.querySets(ctx, selectSets+` AND s.exercise_id = $2 ORDER BY s.seq`, exerciseID)
}

func (t *psqlTx) ListSetsByDate(ctx context.Context, date string) ([]SetRow, error) {
	return t.querySets(ctx, selectSets+` AND e.day = $2 ORDER BY e.id, s.seq`, date)
}

func (t *psqlTx) ListSetsByExerciseName(ctx context.Context, name string) (_ []SetRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.setsbyname")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return t.querySets(ctx, selectSets+` AND e.name = $2 ORDER BY e.day, s.seq`, name)
}

func (t *psqlTx) querySets(ctx context.Context, query string, arg any) ([]SetRow, error) {
	rows, err := t.tx.Query(ctx, query, t.ownerID, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SetRow, error) {
		var s SetRow
		err := row.Scan(&s.ID, &s.ExerciseID, &s.Date, &s.ExerciseName, &s.Seq, &s.Reps, &s.Weight)
		return s, err
	})
}

func (t *psqlTx) GetTemplate(ctx context.Context, name string) (*TemplateRow, error) {
	row := TemplateRow{}
	err := t.tx.QueryRow(
		ctx,
		`SELECT name, exercises FROM workout_template WHERE account_id = $1 AND name = $2`,
		t.ownerID, name,
	).Scan(&row.Name, &row.Exercises)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (t *psqlTx) AddTemplate(ctx context.Context, name string, exercises []string) error {
	_, err := t.tx.Exec(
		ctx,
		`INSERT INTO workout_template (account_id, name, exercises) VALUES ($1, $2, $3)`,
		t.ownerID, name, nonNil(exercises),
	)
	if err != nil && pkg.IsUniqueViolationError(err) {
		return ErrDuplicate
	}
	return err
}

func (t *psqlTx) UpdateTemplate(ctx context.Context, name string, exercises []string) error {
	tag, err := t.tx.Exec(
		ctx,
		`UPDATE workout_template SET exercises = $3 WHERE account_id = $1 AND name = $2`,
		t.ownerID, name, nonNil(exercises),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *psqlTx) DeleteTemplate(ctx context.Context, name string) error {
	tag, err := t.tx.Exec(
		ctx,
		`DELETE FROM workout_template WHERE account_id = $1 AND name = $2`,
		t.ownerID, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *psqlTx) ListTemplates(ctx context.Context) ([]TemplateRow, error) {
	rows, err := t.tx.Query(
		ctx,
		`SELECT name, exercises FROM workout_template WHERE account_id = $1 ORDER BY name`,
		t.ownerID,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (TemplateRow, error) {
		var tmpl TemplateRow
		err := row.Scan(&tmpl.Name, &tmpl.Exercises)
		return tmpl, err
	})
}
