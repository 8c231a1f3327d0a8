package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=auth_test

type authService interface {
	Register(ctx context.Context, username, password string) (*Account, error)
	Authenticate(ctx context.Context, username, password string) (*Token, error)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Handler struct {
	service        authService
	metricsManager *metrics.Manager
}

func NewHandler(service authService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", handler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	authRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.register")
	defer span.End()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	account, err := handler.service.Register(ctx, creds.Username, creds.Password)
	if err != nil {
		log.Tracef("register [%s]: %s", creds.Username, err)
		apperr.WriteHTTPError(w, err)
		return
	}

	handler.metricsManager.CounterRegistrations.Inc()
	pkg.WriteJSONResponse(w, RegisterResponse{
		ID:       account.ID,
		Username: account.Username,
	}, http.StatusCreated)
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.auth.login")
	defer span.End()

	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := handler.service.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		if apperr.IsAuthFailure(err) {
			handler.metricsManager.CounterLoginFailures.Inc()
			reqIp, ipErr := pkg.ReadUserIP(r)
			if ipErr != nil {
				reqIp = "unknown"
			}
			log.Warnf("failed login for [%s] from %s", creds.Username, reqIp)
		} else {
			log.Errorf("login [%s]: %s", creds.Username, err)
		}
		apperr.WriteHTTPError(w, err)
		return
	}

	pkg.WriteJSONResponse(w, LoginResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresAt:   token.ExpiresAt.UTC(),
	}, http.StatusOK)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Tracef("decode credentials: %s", err)
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "invalid request body"))
		return creds, false
	}
	if creds.Username == "" || creds.Password == "" {
		apperr.WriteHTTPError(w, apperr.New(apperr.InvalidInput, "username and password required"))
		return creds, false
	}
	return creds, true
}
