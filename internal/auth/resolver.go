package auth

import (
	"context"
	"errors"

	"github.com/2beens/gymtracker/internal/apperr"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"
)

// Resolver maps a bearer token to the account it was issued for.
type Resolver struct {
	tokens   *TokenService
	accounts AccountsRepo
}

func NewResolver(tokens *TokenService, accounts AccountsRepo) *Resolver {
	return &Resolver{
		tokens:   tokens,
		accounts: accounts,
	}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.resolve")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	username, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	account, err := r.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.New(apperr.UnknownAccount, "token subject has no account")
		}
		return nil, apperr.Wrap(apperr.StorageUnavailable, err, "get account")
	}
	return account, nil
}
