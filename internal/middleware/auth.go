package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/auth"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const bearerPrefix = "Bearer "

//go:generate mockgen -source=$GOFILE -destination=middleware_mocks_test.go -package=middleware_test

type accountResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Account, error)
}

type AuthMiddlewareHandler struct {
	resolver     accountResolver
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(resolver accountResolver) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		resolver: resolver,
		allowedPaths: map[string]bool{
			"/auth/register": true,
			"/auth/login":    true,
		},
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

// AuthCheck resolves the bearer token into an account and puts it on the request context.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				apperr.WriteHTTPError(w, apperr.New(apperr.InvalidToken, "missing bearer token"))
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			account, err := h.resolver.Resolve(ctx, token)
			if err != nil {
				if apperr.IsAuthFailure(err) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s: %s", r.URL.Path, err)
				} else {
					log.Errorf("[failed token check] => %s: %s", r.URL.Path, err)
				}
				apperr.WriteHTTPError(w, err)
				span.SetStatus(codes.Error, "resolve-account-err")
				span.RecordError(err)
				return
			}

			span.SetAttributes(attribute.Int64("account.id", account.ID))
			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), account)))
		})
	}
}
