package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats/templates"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"

	log "github.com/sirupsen/logrus"
)

type Report struct {
	AccountsCreated int
	ExercisesAdded  int
	SetsAdded       int
	TemplatesAdded  int
}

// Seeder loads fixtures through the regular services. Running it twice is harmless:
// existing accounts, exercises and templates are left as they are.
type Seeder struct {
	accounts    auth.AccountsRepo
	authService *auth.Service
	ledger      *workouts.Ledger
	templates   *templates.Service
}

func NewSeeder(
	accounts auth.AccountsRepo,
	authService *auth.Service,
	ledger *workouts.Ledger,
	templatesService *templates.Service,
) *Seeder {
	return &Seeder{
		accounts:    accounts,
		authService: authService,
		ledger:      ledger,
		templates:   templatesService,
	}
}

func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (Report, error) {
	var report Report
	for _, accountFixture := range fixture.Accounts {
		account, created, err := s.account(ctx, accountFixture)
		if err != nil {
			return report, err
		}
		if created {
			report.AccountsCreated++
		}

		ledger := s.ledger.For(account)
		for _, workout := range accountFixture.Workouts {
			for _, exercise := range workout.Exercises {
				err := ledger.AddExercise(ctx, workout.Date, exercise.Name)
				if errors.Is(err, apperr.ErrDuplicateExercise) {
					log.Debugf("seed: [%s] %s %s already logged, skipping", account.Username, workout.Date, exercise.Name)
					continue
				}
				if err != nil {
					return report, fmt.Errorf("add exercise [%s] on %s: %w", exercise.Name, workout.Date, err)
				}
				report.ExercisesAdded++

				for _, set := range exercise.Sets {
					if _, err := ledger.AddSet(ctx, workout.Date, exercise.Name, set.Reps, set.Weight); err != nil {
						return report, fmt.Errorf("add set to [%s] on %s: %w", exercise.Name, workout.Date, err)
					}
					report.SetsAdded++
				}
			}
		}

		ownerTemplates := s.templates.For(account)
		for _, template := range accountFixture.Templates {
			err := ownerTemplates.Add(ctx, template.Name, template.Exercises)
			if errors.Is(err, apperr.ErrDuplicateTemplate) {
				log.Debugf("seed: [%s] template %s exists, skipping", account.Username, template.Name)
				continue
			}
			if err != nil {
				return report, fmt.Errorf("add template [%s]: %w", template.Name, err)
			}
			report.TemplatesAdded++
		}
	}
	return report, nil
}

func (s *Seeder) account(ctx context.Context, fixture AccountFixture) (*auth.Account, bool, error) {
	account, err := s.authService.Register(ctx, fixture.Username, fixture.Password)
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, apperr.ErrDuplicateAccount) {
		return nil, false, fmt.Errorf("register [%s]: %w", fixture.Username, err)
	}

	account, err = s.accounts.GetByUsername(ctx, fixture.Username)
	if err != nil {
		return nil, false, fmt.Errorf("get account [%s]: %w", fixture.Username, err)
	}
	log.Debugf("seed: account [%s] exists, reusing it", fixture.Username)
	return account, false, nil
}
