package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/2beens/gymtracker/internal/gymstats"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

type Fixture struct {
	Accounts []AccountFixture `yaml:"accounts"`
}

type AccountFixture struct {
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Workouts  []WorkoutFixture  `yaml:"workouts"`
	Templates []TemplateFixture `yaml:"templates"`
}

type WorkoutFixture struct {
	Date      string            `yaml:"date"`
	Exercises []ExerciseFixture `yaml:"exercises"`
}

type ExerciseFixture struct {
	Name string       `yaml:"name"`
	Sets []SetFixture `yaml:"sets"`
}

type SetFixture struct {
	Reps   int     `yaml:"reps"`
	Weight float64 `yaml:"weight"`
}

type TemplateFixture struct {
	Name      string   `yaml:"name"`
	Exercises []string `yaml:"exercises"`
}

// DefaultFixture is a single test account with one logged workout and a template.
func DefaultFixture() (*Fixture, error) {
	return Parse(defaultFixture)
}

func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("unmarshal fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate reports every invalid entry at once.
func (f *Fixture) Validate() error {
	var err error
	for i, account := range f.Accounts {
		if strings.TrimSpace(account.Username) == "" || account.Password == "" {
			err = multierr.Append(err, fmt.Errorf("account #%d: username and password are required", i))
		}
		for _, workout := range account.Workouts {
			if _, dateErr := gymstats.ParseDate(workout.Date); dateErr != nil {
				err = multierr.Append(err, fmt.Errorf("account [%s]: workout date [%s]: %w", account.Username, workout.Date, dateErr))
			}
			for _, exercise := range workout.Exercises {
				if strings.TrimSpace(exercise.Name) == "" {
					err = multierr.Append(err, fmt.Errorf("account [%s]: workout [%s]: empty exercise name", account.Username, workout.Date))
				}
			}
		}
		for _, template := range account.Templates {
			if strings.TrimSpace(template.Name) == "" {
				err = multierr.Append(err, fmt.Errorf("account [%s]: empty template name", account.Username))
			}
		}
	}
	return err
}
