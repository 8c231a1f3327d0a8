package workouts

import (
	"context"

	"github.com/2beens/gymtracker/internal/gymstats/store"
)

type Set struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type Exercise struct {
	Name string `json:"name"`
	Sets []Set  `json:"sets"`
}

type Workout struct {
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
}

// LoadWorkout reads the exercises of the date in insertion order, each with its sets in order.
func LoadWorkout(ctx context.Context, tx store.Tx, date string) (*Workout, error) {
	exercises, err := tx.ListExercises(ctx, date)
	if err != nil {
		return nil, err
	}
	sets, err := tx.ListSetsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	setsByExercise := make(map[int64][]Set, len(exercises))
	for _, s := range sets {
		setsByExercise[s.ExerciseID] = append(setsByExercise[s.ExerciseID], Set{
			Reps:   s.Reps,
			Weight: s.Weight,
		})
	}

	workout := &Workout{
		Date:      date,
		Exercises: make([]Exercise, 0, len(exercises)),
	}
	for _, e := range exercises {
		exerciseSets := setsByExercise[e.ID]
		if exerciseSets == nil {
			exerciseSets = []Set{}
		}
		workout.Exercises = append(workout.Exercises, Exercise{
			Name: e.Name,
			Sets: exerciseSets,
		})
	}
	return workout, nil
}
