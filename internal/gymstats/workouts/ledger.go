package workouts

import (
	"context"
	"errors"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ChangeListener is notified after a committed change to an owner's sets.
type ChangeListener interface {
	SetsChanged(ctx context.Context, ownerID int64)
}

type Ledger struct {
	store     store.Store
	listeners []ChangeListener
}

func NewLedger(s store.Store, listeners ...ChangeListener) *Ledger {
	return &Ledger{
		store:     s,
		listeners: listeners,
	}
}

// For returns the ledger of the given account. All its operations are scoped to that account.
func (l *Ledger) For(account *auth.Account) *OwnerLedger {
	return &OwnerLedger{
		ledger:  l,
		ownerID: account.ID,
	}
}

type OwnerLedger struct {
	ledger  *Ledger
	ownerID int64
}

func (o *OwnerLedger) inTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.Classify(o.ledger.store.InTx(ctx, o.ownerID, fn))
}

func (o *OwnerLedger) setsChanged(ctx context.Context) {
	for _, listener := range o.ledger.listeners {
		listener.SetsChanged(ctx, o.ownerID)
	}
}

func (o *OwnerLedger) AddExercise(ctx context.Context, date, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.exercise.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", o.ownerID))

	if err := validateExercise(date, name); err != nil {
		return err
	}

	return o.inTx(ctx, func(tx store.Tx) error {
		if _, err := tx.AddExercise(ctx, date, name); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.DuplicateExercise, "exercise [%s] already exists on %s", name, date)
			}
			return err
		}
		return nil
	})
}

// AddSet appends a set to the exercise and returns its 0-based position.
func (o *OwnerLedger) AddSet(ctx context.Context, date, name string, reps int, weight float64) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.set.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", o.ownerID))

	if err := validateExercise(date, name); err != nil {
		return 0, err
	}

	position := 0
	err = o.inTx(ctx, func(tx store.Tx) error {
		exercise, err := getExercise(ctx, tx, date, name)
		if err != nil {
			return err
		}
		if _, err := tx.AddSet(ctx, exercise.ID, reps, weight); err != nil {
			return err
		}
		sets, err := tx.ListSets(ctx, exercise.ID)
		if err != nil {
			return err
		}
		position = len(sets) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	o.setsChanged(ctx)
	return position, nil
}

// ListExercises never fails for a date without exercises, the workout is just empty.
func (o *OwnerLedger) ListExercises(ctx context.Context, date string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.exercise.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", o.ownerID))

	if _, err := gymstats.ParseDate(date); err != nil {
		return nil, err
	}

	var workout *Workout
	err = o.inTx(ctx, func(tx store.Tx) error {
		loaded, err := LoadWorkout(ctx, tx, date)
		workout = loaded
		return err
	})
	if err != nil {
		return nil, err
	}
	return workout, nil
}

func (o *OwnerLedger) DeleteExercise(ctx context.Context, date, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.exercise.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", o.ownerID))

	if err := validateExercise(date, name); err != nil {
		return err
	}

	err = o.inTx(ctx, func(tx store.Tx) error {
		exercise, err := getExercise(ctx, tx, date, name)
		if err != nil {
			return err
		}
		return tx.DeleteExercise(ctx, exercise.ID)
	})
	if err != nil {
		return err
	}

	o.setsChanged(ctx)
	return nil
}

// DeleteSet removes the set at the 0-based position; the sets after it move one position down.
func (o *OwnerLedger) DeleteSet(ctx context.Context, date, name string, position int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.set.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("owner.id", o.ownerID),
		attribute.Int("position", position),
	)

	if err := validateExercise(date, name); err != nil {
		return err
	}

	err = o.inTx(ctx, func(tx store.Tx) error {
		exercise, err := getExercise(ctx, tx, date, name)
		if err != nil {
			return err
		}
		sets, err := tx.ListSets(ctx, exercise.ID)
		if err != nil {
			return err
		}
		if position < 0 || position >= len(sets) {
			return apperr.New(apperr.IndexOutOfRange, "set index %d out of range [0, %d)", position, len(sets))
		}
		return tx.DeleteSet(ctx, sets[position].ID)
	})
	if err != nil {
		return err
	}

	log.Tracef("ledger: owner %d deleted set %d of [%s] on %s", o.ownerID, position, name, date)
	o.setsChanged(ctx)
	return nil
}

func getExercise(ctx context.Context, tx store.Tx, date, name string) (*store.ExerciseRow, error) {
	exercise, err := tx.GetExercise(ctx, date, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.ExerciseNotFound, "exercise [%s] not found on %s", name, date)
		}
		return nil, err
	}
	return exercise, nil
}

func validateExercise(date, name string) error {
	if _, err := gymstats.ParseDate(date); err != nil {
		return err
	}
	return gymstats.ValidateName("exercise", name)
}
