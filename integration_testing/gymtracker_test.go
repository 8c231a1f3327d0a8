//go:build integration_test

package integration_testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/db"
	"github.com/2beens/gymtracker/internal/gymstats/analytics"
	"github.com/2beens/gymtracker/internal/gymstats/templates"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) request(ctx context.Context, token, method, path string, body any, expectedStatus int, out any) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.Equal(s.T(), expectedStatus, resp.StatusCode, string(respBytes))

	if out != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, out))
	}
}

// newAccount registers a fresh account and returns its access token.
func (s *IntegrationTestSuite) newAccount(ctx context.Context) string {
	creds := auth.Credentials{
		Username: gofakeit.Username() + gofakeit.DigitN(6),
		Password: gofakeit.Password(true, true, true, false, false, 16),
	}
	s.request(ctx, "", http.MethodPost, "/auth/register", creds, http.StatusCreated, nil)

	var loginResp auth.LoginResponse
	s.request(ctx, "", http.MethodPost, "/auth/login", creds, http.StatusOK, &loginResp)
	require.NotEmpty(s.T(), loginResp.AccessToken)
	return loginResp.AccessToken
}

func setsPath(date, exercise string) string {
	return fmt.Sprintf("/workouts/%s/exercises/%s/sets", date, url.PathEscape(exercise))
}

func (s *IntegrationTestSuite) TestWorkoutsAndProgression() {
	ctx := context.Background()
	token := s.newAccount(ctx)
	date := "2025-09-28"

	s.request(ctx, token, http.MethodPost, "/workouts/"+date+"/exercises", map[string]string{"name": "Bench Press"}, http.StatusCreated, nil)
	s.request(ctx, token, http.MethodPost, "/workouts/"+date+"/exercises", map[string]string{"name": "Bench Press"}, http.StatusConflict, nil)
	s.request(ctx, token, http.MethodPost, setsPath(date, "Bench Press"), map[string]any{"reps": 10, "weight": 60}, http.StatusCreated, nil)
	s.request(ctx, token, http.MethodPost, setsPath(date, "Bench Press"), map[string]any{"reps": 8, "weight": 65}, http.StatusCreated, nil)

	var workout workouts.Workout
	s.request(ctx, token, http.MethodGet, "/workouts/"+date, nil, http.StatusOK, &workout)
	require.Len(s.T(), workout.Exercises, 1)
	require.Equal(s.T(), []workouts.Set{{Reps: 10, Weight: 60}, {Reps: 8, Weight: 65}}, workout.Exercises[0].Sets)

	progressionPath := "/analytics/progression/" + url.PathEscape("Bench Press")
	var progression analytics.ProgressionResponse
	s.request(ctx, token, http.MethodGet, progressionPath, nil, http.StatusOK, &progression)
	require.Equal(s.T(), 600.0, progression.Progression["1"][0].Volume)
	require.Equal(s.T(), 520.0, progression.Progression["2"][0].Volume)

	// served from the cache now, and must still follow the next change
	s.request(ctx, token, http.MethodGet, progressionPath, nil, http.StatusOK, &progression)
	s.request(ctx, token, http.MethodDelete, setsPath(date, "Bench Press")+"/0", nil, http.StatusOK, nil)

	progression = analytics.ProgressionResponse{}
	s.request(ctx, token, http.MethodGet, progressionPath, nil, http.StatusOK, &progression)
	require.Len(s.T(), progression.Progression, 1)
	require.Equal(s.T(), 520.0, progression.Progression["1"][0].Volume)

	s.request(ctx, token, http.MethodDelete, setsPath(date, "Bench Press")+"/5", nil, http.StatusBadRequest, nil)

	var calendar analytics.Calendar
	s.request(ctx, token, http.MethodGet, "/analytics/calendar/2025/9", nil, http.StatusOK, &calendar)
	require.Len(s.T(), calendar.Days, 30)
	require.True(s.T(), calendar.Days[date])
	require.False(s.T(), calendar.Days["2025-09-27"])

	// another owner sees nothing
	other := s.newAccount(ctx)
	s.request(ctx, other, http.MethodGet, progressionPath, nil, http.StatusNotFound, nil)
}

func (s *IntegrationTestSuite) TestTemplates() {
	ctx := context.Background()
	token := s.newAccount(ctx)
	date := "2025-10-01"

	s.request(ctx, token, http.MethodPost, "/templates", map[string]any{
		"name":      "Push Day",
		"exercises": []string{"Bench Press", "Overhead Press", "Dips"},
	}, http.StatusCreated, nil)
	s.request(ctx, token, http.MethodPost, "/workouts/"+date+"/exercises", map[string]string{"name": "Dips"}, http.StatusCreated, nil)

	applyPath := "/templates/" + url.PathEscape("Push Day") + "/apply/" + date
	var result templates.ApplyResult
	s.request(ctx, token, http.MethodPost, applyPath, nil, http.StatusOK, &result)
	require.Equal(s.T(), []string{"Bench Press", "Overhead Press"}, result.Added)
	require.Equal(s.T(), []string{"Dips"}, result.Skipped)

	result = templates.ApplyResult{}
	s.request(ctx, token, http.MethodPost, applyPath, nil, http.StatusOK, &result)
	require.Empty(s.T(), result.Added)
	require.Len(s.T(), result.Workout.Exercises, 3)

	var list map[string][]string
	s.request(ctx, token, http.MethodGet, "/templates", nil, http.StatusOK, &list)
	require.Equal(s.T(), map[string][]string{"Push Day": {"Bench Press", "Overhead Press", "Dips"}}, list)

	s.request(ctx, token, http.MethodDelete, "/templates/"+url.PathEscape("Push Day"), nil, http.StatusOK, nil)
	s.request(ctx, token, http.MethodPost, applyPath, nil, http.StatusNotFound, nil)
}

func (s *IntegrationTestSuite) TestConcurrentSets() {
	ctx := context.Background()
	token := s.newAccount(ctx)
	date := "2025-10-02"
	s.request(ctx, token, http.MethodPost, "/workouts/"+date+"/exercises", map[string]string{"name": "Squat"}, http.StatusCreated, nil)

	const setsCount = 20
	indexes := make(chan int, setsCount)
	errs := make(chan error, setsCount)
	var wg sync.WaitGroup
	for i := 0; i < setsCount; i++ {
		wg.Add(1)
		go func(reps int) {
			defer wg.Done()
			index, err := s.addSet(ctx, token, date, "Squat", reps, 100)
			if err != nil {
				errs <- err
				return
			}
			indexes <- index
		}(i + 1)
	}
	wg.Wait()
	close(indexes)
	close(errs)

	for err := range errs {
		require.NoError(s.T(), err)
	}
	seen := map[int]bool{}
	for index := range indexes {
		seen[index] = true
	}
	require.Len(s.T(), seen, setsCount)

	var workout workouts.Workout
	s.request(ctx, token, http.MethodGet, "/workouts/"+date, nil, http.StatusOK, &workout)
	require.Len(s.T(), workout.Exercises[0].Sets, setsCount)
}

func (s *IntegrationTestSuite) TestSchemaConstraints() {
	var tables int
	err := s.DB.QueryRow(`
		SELECT count(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('account', 'workout_exercise', 'workout_set', 'workout_template')`,
	).Scan(&tables)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 4, tables)

	var accountID int64
	err = s.DB.QueryRow(
		`INSERT INTO account (username, password) VALUES ($1, 'x') RETURNING id`,
		"schema-"+gofakeit.DigitN(8),
	).Scan(&accountID)
	require.NoError(s.T(), err)

	_, err = s.DB.Exec(`INSERT INTO workout_exercise (account_id, day, name) VALUES ($1, 'yesterday', 'Squat')`, accountID)
	require.Error(s.T(), err)
}

func (s *IntegrationTestSuite) TestStoreInstanceSurvivesMigrations() {
	var instanceID string
	require.NoError(s.T(), s.DB.QueryRow(`SELECT id FROM store_instance`).Scan(&instanceID))
	require.NotEmpty(s.T(), instanceID)

	// the progression cache namespace must not change when the schema is applied again
	for _, stmt := range db.Schema {
		_, err := s.DB.Exec(stmt)
		require.NoError(s.T(), err)
	}

	var rows int
	var again string
	require.NoError(s.T(), s.DB.QueryRow(`SELECT count(*), min(id) FROM store_instance`).Scan(&rows, &again))
	require.Equal(s.T(), 1, rows)
	require.Equal(s.T(), instanceID, again)
}

// addSet is safe to call from any goroutine.
func (s *IntegrationTestSuite) addSet(ctx context.Context, token, date, exercise string, reps int, weight float64) (int, error) {
	data, err := json.Marshal(map[string]any{"reps": reps, "weight": weight})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+setsPath(date, exercise), bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("add set: status %d: %s", resp.StatusCode, body)
	}
	var addSetResp workouts.AddSetResponse
	if err := json.NewDecoder(resp.Body).Decode(&addSetResp); err != nil {
		return 0, err
	}
	return addSetResp.Index, nil
}
