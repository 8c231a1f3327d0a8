package templates

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type TemplateRequest struct {
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Handler struct {
	service        *Service
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	templatesRouter := router.PathPrefix("/templates").Subrouter()
	templatesRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("list-templates")
	templatesRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-template")
	templatesRouter.HandleFunc("/{name}", handler.HandleEdit).Methods("PUT", "OPTIONS").Name("edit-template")
	templatesRouter.HandleFunc("/{name}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-template")
	templatesRouter.HandleFunc("/{name}/apply/{date}", handler.HandleApply).Methods("POST", "OPTIONS").Name("apply-template")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	templates, err := handler.service.For(account).List(ctx)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, templates, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.add")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add template, unmarshal json params: %s", err)
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid request body"))
		return
	}

	if err := handler.service.For(account).Add(ctx, req.Name, req.Exercises); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("template [%s] added", req.Name),
	}, http.StatusCreated)
}

func (handler *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.edit")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("edit template, unmarshal json params: %s", err)
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid request body"))
		return
	}

	name := mux.Vars(r)["name"]
	if err := handler.service.For(account).Edit(ctx, name, req.Exercises); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("template [%s] updated", name),
	}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.delete")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	name := mux.Vars(r)["name"]
	if err := handler.service.For(account).Delete(ctx, name); err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, MessageResponse{
		Message: fmt.Sprintf("template [%s] deleted", name),
	}, http.StatusOK)
}

func (handler *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.apply")
	defer span.End()

	account, err := auth.RequestAccount(r)
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	vars := mux.Vars(r)
	result, err := handler.service.For(account).Apply(ctx, vars["date"], vars["name"])
	if err != nil {
		apperr.WriteHTTPError(w, err)
		return
	}

	handler.metricsManager.CounterTemplateApplies.Inc()
	pkg.WriteJSONResponse(w, result, http.StatusOK)
}
