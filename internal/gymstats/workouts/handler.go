package workouts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type AddExerciseRequest struct {
	Name string `json:"name"`
}

type AddSetRequest struct {
	Reps   *int     `json:"reps"`
	Weight *float64 `json:"weight"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AddSetResponse struct {
	Message string `json:"message"`
	Index   int    `json:"index"`
	Set     Set    `json:"set"`
}

type Handler struct {
	ledger         *Ledger
	metricsManager *metrics.Manager
}

func NewHandler(ledger *Ledger, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		ledger:         ledger,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	workoutsRouter := router.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("/{date}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	workoutsRouter.HandleFunc("/{date}/exercises", handler.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-exercise")
	workoutsRouter.HandleFunc("/{date}/exercises/{name}", handler.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	workoutsRouter.HandleFunc("/{date}/exercises/{name}/sets", handler.HandleAddSet).Methods("POST", "OPTIONS").Name("add-set")
	workoutsRouter.HandleFunc("/{date}/exercises/{name}/sets/{index}", handler.HandleDeleteSet).Methods("DELETE", "OPTIONS").Name("delete-set")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	workout, err := handler.ledger.For(account).ListExercises(ctx, mux.Vars(r)["date"])
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, workout, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercise.add")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid request body"))
		return
	}

	date := mux.Vars(r)["date"]
	if err := handler.ledger.For(account).AddExercise(ctx, date, req.Name); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("exercise [%s] added for %s", req.Name, date),
	}, http.StatusCreated)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercise.delete")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	vars := mux.Vars(r)
	date, name := vars["date"], vars["name"]
	if err := handler.ledger.For(account).DeleteExercise(ctx, date, name); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("exercise [%s] deleted from %s", name, date),
	}, http.StatusOK)
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.set.add")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	var req AddSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add set, unmarshal json params: %s", err)
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid request body"))
		return
	}
	if req.Reps == nil || req.Weight == nil {
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "reps and weight are required"))
		return
	}

	vars := mux.Vars(r)
	date, name := vars["date"], vars["name"]
	index, err := handler.ledger.For(account).AddSet(ctx, date, name, *req.Reps, *req.Weight)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	handler.metricsManager.CounterSetsLogged.Inc()
	pkg.WriteJSONResponse(w, AddSetResponse{
		Message: fmt.Sprintf("set added to [%s] on %s", name, date),
		Index:   index,
		Set: Set{
			Reps:   *req.Reps,
			Weight: *req.Weight,
		},
	}, http.StatusCreated)
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.set.delete")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	vars := mux.Vars(r)
	date, name := vars["date"], vars["name"]
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid set index [%s]", vars["index"]))
		return
	}

	if err := handler.ledger.For(account).DeleteSet(ctx, date, name, index); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("set %d deleted from [%s] on %s", index, name, date),
	}, http.StatusOK)
}
