package auth

import (
	"context"
	"net/http"

	"github.com/2beens/gymtracker/internal/apperr"
)

type accountCtxKey struct{}

func WithAccount(ctx context.Context, account *Account) context.Context {
	return context.WithValue(ctx, accountCtxKey{}, account)
}

// AccountFromContext returns the account the auth middleware resolved for the request.
func AccountFromContext(ctx context.Context) (*Account, bool) {
	account, ok := ctx.Value(accountCtxKey{}).(*Account)
	return account, ok && account != nil
}

// RequestAccount returns the request's resolved account, or InvalidToken if the
// request did not pass through the auth middleware.
func RequestAccount(r *http.Request) (*Account, error) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		return nil, apperr.New(apperr.InvalidToken, "missing bearer token")
	}
	return account, nil
}
