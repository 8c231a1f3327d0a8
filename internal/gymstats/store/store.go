// Package store is the persistence contract of the gym tracker. Every
// transaction is bound to a single owner: the owner id is given once, when the
// transaction starts, and all reads and writes made through the Tx are scoped
// to it.
package store

import (
	"context"
	"errors"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/pkg"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type ExerciseRow struct {
	ID   int64
	Date string
	Name string
}

// SetRow is a single set; Seq orders the sets of one exercise and is assigned by the store.
type SetRow struct {
	ID           int64
	ExerciseID   int64
	Date         string
	ExerciseName string
	Seq          int64
	Reps         int
	Weight       float64
}

type TemplateRow struct {
	Name      string
	Exercises []string
}

type Store interface {
	// InstanceID identifies the data set behind the store. Owner ids are only
	// unique within one instance.
	InstanceID(ctx context.Context) (string, error)

	// InTx runs fn in a single transaction for the owner. Transactions of the
	// same owner are serialized; if fn returns an error, none of its writes persist.
	InTx(ctx context.Context, ownerID int64, fn func(tx Tx) error) error
}

type Tx interface {
	OwnerID() int64

	// GetExercise returns ErrNotFound if the owner has no such exercise on the date.
	GetExercise(ctx context.Context, date, name string) (*ExerciseRow, error)
	// AddExercise returns ErrDuplicate if the exercise already exists on the date.
	AddExercise(ctx context.Context, date, name string) (*ExerciseRow, error)
	// DeleteExercise removes the exercise and all its sets.
	DeleteExercise(ctx context.Context, exerciseID int64) error
	// ListExercises returns the exercises of the date in insertion order.
	ListExercises(ctx context.Context, date string) ([]ExerciseRow, error)
	// ActiveDates returns the distinct dates starting with datePrefix that have at least one exercise.
	ActiveDates(ctx context.Context, datePrefix string) ([]string, error)

	// AddSet appends a set to the end of the exercise's sequence.
	AddSet(ctx context.Context, exerciseID int64, reps int, weight float64) (*SetRow, error)
	DeleteSet(ctx context.Context, setID int64) error
	// ListSets returns the sets of one exercise ordered by Seq.
	ListSets(ctx context.Context, exerciseID int64) ([]SetRow, error)
	// ListSetsByDate returns all sets of the date, grouped by exercise (insertion order), then by Seq.
	ListSetsByDate(ctx context.Context, date string) ([]SetRow, error)
	// ListSetsByExerciseName returns all sets of the named exercise across dates, ordered by date, then Seq.
	ListSetsByExerciseName(ctx context.Context, name string) ([]SetRow, error)

	GetTemplate(ctx context.Context, name string) (*TemplateRow, error)
	AddTemplate(ctx context.Context, name string, exercises []string) error
	UpdateTemplate(ctx context.Context, name string, exercises []string) error
	DeleteTemplate(ctx context.Context, name string) error
	// ListTemplates returns the owner's templates ordered by name.
	ListTemplates(ctx context.Context) ([]TemplateRow, error)
}

// Classify maps an error returned from a transaction to an apperr kind.
// Domain errors pass through; a uniqueness conflict that escaped the domain
// checks is a ConstraintViolation and anything else is StorageUnavailable.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, ErrDuplicate) || pkg.IsUniqueViolationError(err) {
		return apperr.Wrap(apperr.ConstraintViolation, err, "conflicting concurrent write")
	}
	return apperr.Wrap(apperr.StorageUnavailable, err, "storage failure")
}
