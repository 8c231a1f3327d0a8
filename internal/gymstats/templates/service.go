package templates

import (
	"context"
	"errors"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// ApplyResult lists the exercise names created by an apply and the ones
// skipped because the date already had them.
type ApplyResult struct {
	Added   []string          `json:"added"`
	Skipped []string          `json:"skipped"`
	Workout *workouts.Workout `json:"workout"`
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{
		store: s,
	}
}

func (s *Service) For(account *auth.Account) *OwnerTemplates {
	return &OwnerTemplates{
		store:   s.store,
		ownerID: account.ID,
	}
}

type OwnerTemplates struct {
	store   store.Store
	ownerID int64
}

func (o *OwnerTemplates) inTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.Classify(o.store.InTx(ctx, o.ownerID, fn))
}

func (o *OwnerTemplates) Add(ctx context.Context, name string, exercises []string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templates.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validate(name, exercises); err != nil {
		return err
	}

	return o.inTx(ctx, func(tx store.Tx) error {
		if err := tx.AddTemplate(ctx, name, exercises); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.New(apperr.DuplicateTemplate, "template [%s] already exists", name)
			}
			return err
		}
		return nil
	})
}

// Edit replaces the whole exercise list of the template.
func (o *OwnerTemplates) Edit(ctx context.Context, name string, exercises []string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templates.edit")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := validate(name, exercises); err != nil {
		return err
	}

	return o.inTx(ctx, func(tx store.Tx) error {
		return templateNotFound(name, tx.UpdateTemplate(ctx, name, exercises))
	})
}

func (o *OwnerTemplates) Delete(ctx context.Context, name string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return o.inTx(ctx, func(tx store.Tx) error {
		return templateNotFound(name, tx.DeleteTemplate(ctx, name))
	})
}

func (o *OwnerTemplates) List(ctx context.Context) (_ map[string][]string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	templates := make(map[string][]string)
	err = o.inTx(ctx, func(tx store.Tx) error {
		rows, err := tx.ListTemplates(ctx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			templates[row.Name] = row.Exercises
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Apply creates, in template order, every exercise of the template the date does
// not have yet. Existing exercises and their sets are left untouched, so applying
// the same template twice is the same as applying it once.
func (o *OwnerTemplates) Apply(ctx context.Context, date, name string) (_ *ApplyResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "templates.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("owner.id", o.ownerID),
		attribute.String("template", name),
	)

	if _, err := gymstats.ParseDate(date); err != nil {
		return nil, err
	}

	result := &ApplyResult{
		Added:   []string{},
		Skipped: []string{},
	}
	err = o.inTx(ctx, func(tx store.Tx) error {
		template, err := tx.GetTemplate(ctx, name)
		if err != nil {
			return templateNotFound(name, err)
		}

		for _, exerciseName := range template.Exercises {
			_, err := tx.GetExercise(ctx, date, exerciseName)
			if err == nil {
				result.Skipped = append(result.Skipped, exerciseName)
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if _, err := tx.AddExercise(ctx, date, exerciseName); err != nil {
				return err
			}
			result.Added = append(result.Added, exerciseName)
		}

		result.Workout, err = workouts.LoadWorkout(ctx, tx, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Tracef("templates: owner %d applied [%s] to %s, added %d, skipped %d",
		o.ownerID, name, date, len(result.Added), len(result.Skipped))
	return result, nil
}

func templateNotFound(name string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.TemplateNotFound, "template [%s] not found", name)
	}
	return err
}

func validate(name string, exercises []string) error {
	if err := gymstats.ValidateName("template", name); err != nil {
		return err
	}
	for _, exercise := range exercises {
		if err := gymstats.ValidateName("exercise", exercise); err != nil {
			return err
		}
	}
	return nil
}
