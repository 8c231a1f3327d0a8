package workouts_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats/store"
	"github.com/2beens/gymtracker/internal/gymstats/workouts"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router         *mux.Router
	metricsManager *metrics.Manager
}

func newTestServer() *testServer {
	metricsManager := metrics.NewTestManager()
	r := mux.NewRouter()
	workouts.NewHandler(workouts.NewLedger(store.NewMemoryStore()), metricsManager).SetupRoutes(r)
	return &testServer{
		router:         r,
		metricsManager: metricsManager,
	}
}

func (s *testServer) do(t *testing.T, account *auth.Account, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if account != nil {
		req = req.WithContext(auth.WithAccount(req.Context(), account))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func errorKind(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandler_SetupRoutes(t *testing.T) {
	s := newTestServer()

	routes := map[string]string{
		"get-workout":     "/workouts/{date}",
		"add-exercise":    "/workouts/{date}/exercises",
		"delete-exercise": "/workouts/{date}/exercises/{name}",
		"add-set":         "/workouts/{date}/exercises/{name}/sets",
		"delete-set":      "/workouts/{date}/exercises/{name}/sets/{index}",
	}
	for name, path := range routes {
		route := s.router.Get(name)
		require.NotNil(t, route, name)
		tmpl, err := route.GetPathTemplate()
		require.NoError(t, err)
		assert.Equal(t, path, tmpl)
	}
}

func TestHandler_NoAccount(t *testing.T) {
	s := newTestServer()
	rr := s.do(t, nil, http.MethodGet, "/workouts/2025-09-28", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "InvalidToken", errorKind(t, rr))
}

func TestHandler_WorkoutFlow(t *testing.T) {
	s := newTestServer()

	rr := s.do(t, alice, http.MethodGet, "/workouts/2025-09-28", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"date":"2025-09-28","exercises":[]}`, rr.Body.String())

	rr = s.do(t, alice, http.MethodPost, "/workouts/2025-09-28/exercises", `{"name":"Bench Press"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(t, alice, http.MethodPost, "/workouts/2025-09-28/exercises", `{"name":"Bench Press"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "DuplicateExercise", errorKind(t, rr))

	rr = s.do(t, alice, http.MethodPost, "/workouts/2025-09-28/exercises/Bench%20Press/sets", `{"reps":10,"weight":60}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var addSetResp workouts.AddSetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addSetResp))
	assert.Equal(t, 0, addSetResp.Index)

	rr = s.do(t, alice, http.MethodPost, "/workouts/2025-09-28/exercises/Bench%20Press/sets", `{"reps":8,"weight":65}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, float64(2), testutil.ToFloat64(s.metricsManager.CounterSetsLogged))

	rr = s.do(t, alice, http.MethodGet, "/workouts/2025-09-28", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"date":"2025-09-28","exercises":[{"name":"Bench Press","sets":[{"reps":10,"weight":60},{"reps":8,"weight":65}]}]}`, rr.Body.String())

	rr = s.do(t, alice, http.MethodDelete, "/workouts/2025-09-28/exercises/Bench%20Press/sets/2", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "IndexOutOfRange", errorKind(t, rr))

	rr = s.do(t, alice, http.MethodDelete, "/workouts/2025-09-28/exercises/Bench%20Press/sets/0", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, alice, http.MethodGet, "/workouts/2025-09-28", "")
	assert.JSONEq(t, `{"date":"2025-09-28","exercises":[{"name":"Bench Press","sets":[{"reps":8,"weight":65}]}]}`, rr.Body.String())

	// bob cannot see or touch alice's data
	rr = s.do(t, bob, http.MethodDelete, "/workouts/2025-09-28/exercises/Bench%20Press", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "ExerciseNotFound", errorKind(t, rr))

	rr = s.do(t, alice, http.MethodDelete, "/workouts/2025-09-28/exercises/Bench%20Press", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, alice, http.MethodGet, "/workouts/2025-09-28", "")
	assert.JSONEq(t, `{"date":"2025-09-28","exercises":[]}`, rr.Body.String())
}

func TestHandler_InvalidInput(t *testing.T) {
	s := newTestServer()
	require.Equal(t, http.StatusCreated, s.do(t, alice, http.MethodPost, "/workouts/2025-09-28/exercises", `{"name":"Squat"}`).Code)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad date", http.MethodGet, "/workouts/2025-13-01", "", http.StatusBadRequest},
		{"bad body", http.MethodPost, "/workouts/2025-09-28/exercises", `{`, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/workouts/2025-09-28/exercises", `{"name":""}`, http.StatusBadRequest},
		{"slash in name", http.MethodPost, "/workouts/2025-09-28/exercises", `{"name":"Push/Pull"}`, http.StatusBadRequest},
		{"missing weight", http.MethodPost, "/workouts/2025-09-28/exercises/Squat/sets", `{"reps":5}`, http.StatusBadRequest},
		{"set on missing exercise", http.MethodPost, "/workouts/2025-09-28/exercises/Deadlift/sets", `{"reps":5,"weight":100}`, http.StatusNotFound},
		{"bad index", http.MethodDelete, "/workouts/2025-09-28/exercises/Squat/sets/first", "", http.StatusBadRequest},
		{"negative index", http.MethodDelete, "/workouts/2025-09-28/exercises/Squat/sets/-1", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := s.do(t, alice, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}
