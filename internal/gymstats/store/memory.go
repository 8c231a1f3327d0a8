package store

import (
	"cmp"
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymtracker/pkg"
)

type ownerData struct {
	exercises []ExerciseRow
	sets      []SetRow
	templates map[string][]string
}

func (d *ownerData) clone() *ownerData {
	c := &ownerData{
		exercises: slices.Clone(d.exercises),
		sets:      slices.Clone(d.sets),
		templates: make(map[string][]string, len(d.templates)),
	}
	for name, exercises := range d.templates {
		c.templates[name] = slices.Clone(exercises)
	}
	return c
}

// MemoryStore keeps all data in process memory. A single mutex serializes all
// transactions; a failed transaction restores the owner's data as it was before.
type MemoryStore struct {
	instanceID string
	mutex      sync.Mutex
	owners     map[int64]*ownerData
	lastID     int64
}

func NewMemoryStore() *MemoryStore {
	instanceID, err := pkg.GenerateRandomString(12)
	if err != nil {
		instanceID = strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return &MemoryStore{
		instanceID: "mem-" + instanceID,
		owners:     make(map[int64]*ownerData),
	}
}

// InstanceID identifies this store; every new MemoryStore gets a new one.
func (s *MemoryStore) InstanceID(context.Context) (string, error) {
	return s.instanceID, nil
}

func (s *MemoryStore) InTx(ctx context.Context, ownerID int64, fn func(tx Tx) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, ok := s.owners[ownerID]
	if !ok {
		data = &ownerData{templates: make(map[string][]string)}
	}

	working := data.clone()
	if err := fn(&memoryTx{store: s, ownerID: ownerID, data: working}); err != nil {
		return err
	}

	s.owners[ownerID] = working
	return nil
}

func (s *MemoryStore) nextID() int64 {
	s.lastID++
	return s.lastID
}

type memoryTx struct {
	store   *MemoryStore
	ownerID int64
	data    *ownerData
}

func (tx *memoryTx) OwnerID() int64 {
	return tx.ownerID
}

func (tx *memoryTx) GetExercise(_ context.Context, date, name string) (*ExerciseRow, error) {
	for _, e := range tx.data.exercises {
		if e.Date == date && e.Name == name {
			row := e
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (tx *memoryTx) AddExercise(ctx context.Context, date, name string) (*ExerciseRow, error) {
	if _, err := tx.GetExercise(ctx, date, name); err == nil {
		return nil, ErrDuplicate
	}
	row := ExerciseRow{
		ID:   tx.store.nextID(),
		Date: date,
		Name: name,
	}
	tx.data.exercises = append(tx.data.exercises, row)
	return &row, nil
}

func (tx *memoryTx) DeleteExercise(_ context.Context, exerciseID int64) error {
	idx := slices.IndexFunc(tx.data.exercises, func(e ExerciseRow) bool {
		return e.ID == exerciseID
	})
	if idx < 0 {
		return ErrNotFound
	}
	tx.data.exercises = slices.Delete(tx.data.exercises, idx, idx+1)
	tx.data.sets = slices.DeleteFunc(tx.data.sets, func(s SetRow) bool {
		return s.ExerciseID == exerciseID
	})
	return nil
}

func (tx *memoryTx) ListExercises(_ context.Context, date string) ([]ExerciseRow, error) {
	var rows []ExerciseRow
	for _, e := range tx.data.exercises {
		if e.Date == date {
			rows = append(rows, e)
		}
	}
	return rows, nil
}

func (tx *memoryTx) ActiveDates(_ context.Context, datePrefix string) ([]string, error) {
	seen := make(map[string]bool)
	var dates []string
	for _, e := range tx.data.exercises {
		if strings.HasPrefix(e.Date, datePrefix) && !seen[e.Date] {
			seen[e.Date] = true
			dates = append(dates, e.Date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (tx *memoryTx) AddSet(_ context.Context, exerciseID int64, reps int, weight float64) (*SetRow, error) {
	idx := slices.IndexFunc(tx.data.exercises, func(e ExerciseRow) bool {
		return e.ID == exerciseID
	})
	if idx < 0 {
		return nil, ErrNotFound
	}
	exercise := tx.data.exercises[idx]

	var maxSeq int64
	for _, s := range tx.data.sets {
		if s.ExerciseID == exerciseID && s.Seq > maxSeq {
			maxSeq = s.Seq
		}
	}

	row := SetRow{
		ID:           tx.store.nextID(),
		ExerciseID:   exerciseID,
		Date:         exercise.Date,
		ExerciseName: exercise.Name,
		Seq:          maxSeq + 1,
		Reps:         reps,
		Weight:       weight,
	}
	tx.data.sets = append(tx.data.sets, row)
	return &row, nil
}

func (tx *memoryTx) DeleteSet(_ context.Context, setID int64) error {
	before := len(tx.data.sets)
	tx.data.sets = slices.DeleteFunc(tx.data.sets, func(s SetRow) bool {
		return s.ID == setID
	})
	if len(tx.data.sets) == before {
		return ErrNotFound
	}
	return nil
}

func (tx *memoryTx) ListSets(_ context.Context, exerciseID int64) ([]SetRow, error) {
	var rows []SetRow
	for _, s := range tx.data.sets {
		if s.ExerciseID == exerciseID {
			rows = append(rows, s)
		}
	}
	sortSets(rows, nil)
	return rows, nil
}

func (tx *memoryTx) ListSetsByDate(_ context.Context, date string) ([]SetRow, error) {
	var rows []SetRow
	for _, s := range tx.data.sets {
		if s.Date == date {
			rows = append(rows, s)
		}
	}
	// exercise ids grow with insertion, so ordering by them keeps insertion order
	sortSets(rows, func(a, b SetRow) int {
		return cmp.Compare(a.ExerciseID, b.ExerciseID)
	})
	return rows, nil
}

func (tx *memoryTx) ListSetsByExerciseName(_ context.Context, name string) ([]SetRow, error) {
	var rows []SetRow
	for _, s := range tx.data.sets {
		if s.ExerciseName == name {
			rows = append(rows, s)
		}
	}
	sortSets(rows, func(a, b SetRow) int {
		return strings.Compare(a.Date, b.Date)
	})
	return rows, nil
}

func (tx *memoryTx) GetTemplate(_ context.Context, name string) (*TemplateRow, error) {
	exercises, ok := tx.data.templates[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &TemplateRow{
		Name:      name,
		Exercises: slices.Clone(exercises),
	}, nil
}

func (tx *memoryTx) AddTemplate(_ context.Context, name string, exercises []string) error {
	if _, ok := tx.data.templates[name]; ok {
		return ErrDuplicate
	}
	tx.data.templates[name] = nonNil(exercises)
	return nil
}

func (tx *memoryTx) UpdateTemplate(_ context.Context, name string, exercises []string) error {
	if _, ok := tx.data.templates[name]; !ok {
		return ErrNotFound
	}
	tx.data.templates[name] = nonNil(exercises)
	return nil
}

func (tx *memoryTx) DeleteTemplate(_ context.Context, name string) error {
	if _, ok := tx.data.templates[name]; !ok {
		return ErrNotFound
	}
	delete(tx.data.templates, name)
	return nil
}

func (tx *memoryTx) ListTemplates(_ context.Context) ([]TemplateRow, error) {
	rows := make([]TemplateRow, 0, len(tx.data.templates))
	for name, exercises := range tx.data.templates {
		rows = append(rows, TemplateRow{
			Name:      name,
			Exercises: slices.Clone(exercises),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

// sortSets orders by the given comparison first (if any), then by Seq.
func sortSets(rows []SetRow, first func(a, b SetRow) int) {
	slices.SortStableFunc(rows, func(a, b SetRow) int {
		if first != nil {
			if c := first(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

func nonNil(exercises []string) []string {
	if exercises == nil {
		return []string{}
	}
	return slices.Clone(exercises)
}
