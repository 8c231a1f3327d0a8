package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Analyzer is read-only; it never changes the workout data.
type Analyzer struct {
	store store.Store
	cache *ProgressionCache
}

// NewAnalyzer creates an analyzer; cache may be nil.
func NewAnalyzer(s store.Store, cache *ProgressionCache) *Analyzer {
	return &Analyzer{
		store: s,
		cache: cache,
	}
}

func (a *Analyzer) For(account *auth.Account) *OwnerAnalyzer {
	return &OwnerAnalyzer{
		analyzer: a,
		ownerID:  account.ID,
	}
}

type OwnerAnalyzer struct {
	analyzer *Analyzer
	ownerID  int64
}

// MonthlyCalendar reports, for every day of the month, whether any exercise was logged on it.
func (o *OwnerAnalyzer) MonthlyCalendar(ctx context.Context, year int, month time.Month) (_ *Calendar, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.calendar")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("owner.id", o.ownerID),
		attribute.Int("year", year),
		attribute.Int("month", int(month)),
	)

	if month < time.January || month > time.December {
		return nil, apperr.New(apperr.InvalidInput, "invalid month [%d]", int(month))
	}
	if year < 1 || year > 9999 {
		return nil, apperr.New(apperr.InvalidInput, "invalid year [%d]", year)
	}

	var activeDates []string
	err = store.Classify(o.analyzer.store.InTx(ctx, o.ownerID, func(tx store.Tx) error {
		dates, err := tx.ActiveDates(ctx, monthPrefix(year, month))
		activeDates = dates
		return err
	}))
	if err != nil {
		return nil, err
	}

	return newCalendar(year, month, activeDates), nil
}

// ExerciseProgression fails with NoData if the owner has no sets of the exercise.
func (o *OwnerAnalyzer) ExerciseProgression(ctx context.Context, exerciseName string) (_ Progression, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analytics.progression")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("owner.id", o.ownerID))

	if strings.TrimSpace(exerciseName) == "" {
		return nil, apperr.New(apperr.InvalidInput, "exercise name must not be empty")
	}

	cache := o.analyzer.cache
	version := unknownVersion
	if cache != nil {
		cached, currentVersion, hit := cache.Lookup(ctx, o.ownerID, exerciseName)
		if hit {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
		version = currentVersion
	}

	var sets []store.SetRow
	err = store.Classify(o.analyzer.store.InTx(ctx, o.ownerID, func(tx store.Tx) error {
		rows, err := tx.ListSetsByExerciseName(ctx, exerciseName)
		sets = rows
		return err
	}))
	if err != nil {
		return nil, err
	}

	if len(sets) == 0 {
		return nil, apperr.New(apperr.NoData, "no sets recorded for [%s]", exerciseName)
	}

	progression := BuildProgression(sets)
	if cache != nil {
		cache.Store(ctx, o.ownerID, version, exerciseName, progression)
	}
	return progression, nil
}
