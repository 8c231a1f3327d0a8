package analytics

import (
	"slices"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/gymstats/store"
)

type ProgressionPoint struct {
	Date   string  `json:"date"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Volume float64 `json:"volume"`
}

// Progression maps a 1-based set position label ("1", "2", ...) to the
// chronological series of sets recorded at that position.
type Progression map[string][]ProgressionPoint

// BuildProgression groups the sets by date, numbering them within each date in
// their recorded order, then regroups them by that number. Sets of one date
// must come in recorded order; dates may come in any order.
func BuildProgression(sets []store.SetRow) Progression {
	ordered := slices.Clone(sets)
	// ISO dates sort correctly as strings; stable sort keeps the within-date order
	slices.SortStableFunc(ordered, func(a, b store.SetRow) int {
		return strings.Compare(a.Date, b.Date)
	})

	progression := make(Progression)
	currentDate := ""
	position := 0
	for _, s := range ordered {
		if s.Date != currentDate {
			currentDate = s.Date
			position = 0
		}
		position++

		label := strconv.Itoa(position)
		progression[label] = append(progression[label], ProgressionPoint{
			Date:   s.Date,
			Reps:   s.Reps,
			Weight: s.Weight,
			Volume: float64(s.Reps) * s.Weight,
		})
	}
	return progression
}
