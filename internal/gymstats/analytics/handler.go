package analytics

import (
	"net/http"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/gymstats"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/gorilla/mux"
)

type ProgressionResponse struct {
	Exercise    string      `json:"exercise"`
	Progression Progression `json:"progression"`
}

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	analyticsRouter := router.PathPrefix("/analytics").Subrouter()
	analyticsRouter.HandleFunc("/calendar/{year}/{month}", handler.HandleCalendar).Methods("GET", "OPTIONS").Name("monthly-calendar")
	analyticsRouter.HandleFunc("/progression/{exercise}", handler.HandleProgression).Methods("GET", "OPTIONS").Name("exercise-progression")
}

func (handler *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.calendar")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	vars := mux.Vars(r)
	year, month, err := gymstats.ParseYearMonth(vars["year"], vars["month"])
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	calendar, err := handler.analyzer.For(account).MonthlyCalendar(ctx, year, month)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, calendar, http.StatusOK)
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.progression")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	exercise := mux.Vars(r)["exercise"]
	progression, err := handler.analyzer.For(account).ExerciseProgression(ctx, exercise)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, ProgressionResponse{
		Exercise:    exercise,
		Progression: progression,
	}, http.StatusOK)
}
